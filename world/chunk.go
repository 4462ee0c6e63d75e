package world

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// ChunkState is the lifecycle state of a Chunk. A chunk may regress from
// Meshed to Generated when its mesh is invalidated (e.g. a neighbor loaded).
type ChunkState int32

const (
	ChunkEmpty ChunkState = iota
	ChunkGenerated
	ChunkMeshed
	ChunkActive
)

func (s ChunkState) String() string {
	switch s {
	case ChunkEmpty:
		return "Empty"
	case ChunkGenerated:
		return "Generated"
	case ChunkMeshed:
		return "Meshed"
	case ChunkActive:
		return "Active"
	default:
		return "Unknown"
	}
}

// boundsMinY and boundsMaxY fix the chunk's frustum-culling bounding
// volume. Chunks themselves have unbounded vertical extent, but the
// renderer-facing bounds are a fixed envelope, matching the source
// engine's culling volume.
const (
	boundsMinY = -10
	boundsMaxY = 100
)

// Chunk owns a mapping from local BlockPos to BlockData for a single
// 16x16xunbounded column. Its object identity is stable for the chunk's
// entire residency lifetime: neither ChunkManager nor a background worker
// ever replaces the pointer once inserted into the manager's live map.
type Chunk struct {
	Coord ChunkCoord

	mu     sync.RWMutex
	blocks map[BlockPos]BlockType
	state  ChunkState
	mesh   *ChunkMesh
	dirty  bool

	bounds AABB
}

// NewChunk allocates an Empty placeholder chunk for coord. It is safe to
// insert into a manager's live map before any blocks are populated.
func NewChunk(coord ChunkCoord) *Chunk {
	c := &Chunk{
		Coord:  coord,
		blocks: make(map[BlockPos]BlockType),
		state:  ChunkEmpty,
	}
	ox := float32(coord.WorldOriginX())
	oz := float32(coord.WorldOriginZ())
	c.bounds = NewAABBFromMinMax(
		mgl32.Vec3{ox, boundsMinY, oz},
		mgl32.Vec3{ox + ChunkSize, boundsMaxY, oz + ChunkSize},
	)
	return c
}

// State returns the chunk's current lifecycle state.
func (c *Chunk) State() ChunkState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// SetState transitions the chunk's lifecycle state.
func (c *Chunk) SetState(s ChunkState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Bounds returns the chunk's fixed frustum-culling bounding volume.
func (c *Chunk) Bounds() AABB {
	return c.bounds
}

// Dirty reports whether the chunk's mesh needs to be rebuilt.
func (c *Chunk) Dirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}

// MarkDirty flags the mesh for rebuild and regresses Meshed/Active state
// back to Generated, per the Meshed->Generated regression rule.
func (c *Chunk) MarkDirty() {
	c.mu.Lock()
	c.dirty = true
	if c.state == ChunkMeshed || c.state == ChunkActive {
		c.state = ChunkGenerated
	}
	c.mu.Unlock()
}

// Mesh returns the chunk's currently installed geometry, or nil.
func (c *Chunk) Mesh() *ChunkMesh {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mesh
}

// InstallMesh installs newly built geometry, clears the dirty flag, and
// advances the state to Meshed.
func (c *Chunk) InstallMesh(m *ChunkMesh) {
	c.mu.Lock()
	c.mesh = m
	c.dirty = false
	if c.state == ChunkGenerated {
		c.state = ChunkMeshed
	}
	c.mu.Unlock()
}

// AddBlockLocal inserts a block at local coordinates (lx, lz in [0,16)),
// flooring wy to an integer Y. Duplicates silently overwrite.
func (c *Chunk) AddBlockLocal(lx int32, wy float64, lz int32, t BlockType) {
	pos := BlockPos{X: lx, Y: int32(floorF(wy)), Z: lz}
	c.mu.Lock()
	c.blocks[pos] = t
	c.mu.Unlock()
}

// SetBlockLocal is AddBlockLocal for already-integer local coordinates.
func (c *Chunk) SetBlockLocal(pos BlockPos, t BlockType) {
	c.mu.Lock()
	c.blocks[pos] = t
	c.mu.Unlock()
}

// RemoveBlockLocal deletes a local block, reporting whether one was present.
func (c *Chunk) RemoveBlockLocal(pos BlockPos) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.blocks[pos]
	if ok {
		delete(c.blocks, pos)
	}
	return ok
}

// HasBlockAtLocal bounds-checks lx, lz in [0,16) then looks up the block.
func (c *Chunk) HasBlockAtLocal(pos BlockPos) bool {
	if pos.X < 0 || pos.X >= ChunkSize || pos.Z < 0 || pos.Z >= ChunkSize {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.blocks[pos]
	return ok
}

// GetBlockLocal returns the block type at a local position, or
// (BlockNone, false) if absent.
func (c *Chunk) GetBlockLocal(pos BlockPos) (BlockType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.blocks[pos]
	if !ok {
		return BlockNone, false
	}
	return t, true
}

// AddBlockWorld converts a world position's X/Z to local coordinates via
// arithmetic floor-mod (never sign-naive %, which breaks at negative
// coordinates) and inserts the block.
func (c *Chunk) AddBlockWorld(worldPos BlockPos, t BlockType) {
	lx := FloorMod(worldPos.X, ChunkSize)
	lz := FloorMod(worldPos.Z, ChunkSize)
	c.SetBlockLocal(BlockPos{X: lx, Y: worldPos.Y, Z: lz}, t)
}

// GetBlockPosSnapshot returns an immediately-usable copy of the stored key
// set. Required because the async generation path may insert concurrently
// with a read.
func (c *Chunk) GetBlockPosSnapshot() []BlockPos {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]BlockPos, 0, len(c.blocks))
	for p := range c.blocks {
		out = append(out, p)
	}
	return out
}

// GetBlockDataSnapshot returns a defensive copy of every (position, type)
// pair currently stored.
func (c *Chunk) GetBlockDataSnapshot() []BlockData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]BlockData, 0, len(c.blocks))
	for p, t := range c.blocks {
		out = append(out, BlockData{Pos: p, Type: t})
	}
	return out
}

// Len reports how many blocks are currently stored.
func (c *Chunk) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.blocks)
}

// CenterHeight returns the highest stored block's Y at this chunk's
// horizontal center (8, 8), or (0, false) if none is stored there.
func (c *Chunk) CenterHeight() (int32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	best := int32(0)
	found := false
	for p := range c.blocks {
		if p.X == ChunkSize/2 && p.Z == ChunkSize/2 {
			if !found || p.Y > best {
				best = p.Y
				found = true
			}
		}
	}
	return best, found
}

// ChunkMesh is the optional unified geometry built for a chunk: a flat
// vertex buffer (already in world coordinates) ready for GPU upload by a
// collaborator renderer, plus the quad count it was built from.
type ChunkMesh struct {
	Vertices  []float32
	QuadCount int
}
