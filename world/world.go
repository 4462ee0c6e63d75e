package world

import (
	"voxelite/meshing"

	"github.com/go-gl/mathgl/mgl32"
)

// World is the façade over ChunkManager that embedders and the physics
// and meshing subsystems talk to: block CRUD, near-block queries for
// physics, and mesh-rebuild orchestration.
type World struct {
	Manager          *ChunkManager
	AtlasGridSize    int
	DefaultBlockType BlockType
}

// NewWorld wires a façade around an already-constructed manager.
func NewWorld(manager *ChunkManager, atlasGridSize int, defaultBlockType BlockType) *World {
	if atlasGridSize <= 0 {
		atlasGridSize = AtlasGrid
	}
	return &World{Manager: manager, AtlasGridSize: atlasGridSize, DefaultBlockType: defaultBlockType}
}

// AddBlock inserts a block at a world position. If the owning chunk isn't
// loaded and Generated, the call is a no-op. Marks the owning chunk dirty
// and invalidates neighboring chunks whose meshes depend on this block's
// visibility — every chunk sharing an edge or corner with the boundary
// cell the block sits on.
func (w *World) AddBlock(pos BlockPos, t BlockType) {
	coord := ChunkCoordFromBlock(pos)
	c, ok := w.Manager.GetChunk(coord)
	if !ok || c.State() < ChunkGenerated {
		return
	}
	c.AddBlockWorld(pos, t)
	c.MarkDirty()
	w.Manager.Touch(coord)
	w.invalidateBoundaryNeighbors(coord, pos)
}

// RemoveBlock deletes a block at a world position, returning whether one
// was present. Symmetric to AddBlock in its dirtying/invalidation.
func (w *World) RemoveBlock(pos BlockPos) bool {
	coord := ChunkCoordFromBlock(pos)
	c, ok := w.Manager.GetChunk(coord)
	if !ok || c.State() < ChunkGenerated {
		return false
	}
	lx := FloorMod(pos.X, ChunkSize)
	lz := FloorMod(pos.Z, ChunkSize)
	removed := c.RemoveBlockLocal(BlockPos{X: lx, Y: pos.Y, Z: lz})
	if removed {
		c.MarkDirty()
		w.Manager.Touch(coord)
		w.invalidateBoundaryNeighbors(coord, pos)
	}
	return removed
}

// GetBlockType returns the stored type, or BlockNone if the chunk is
// absent or the block itself is absent.
func (w *World) GetBlockType(pos BlockPos) BlockType {
	coord := ChunkCoordFromBlock(pos)
	c, ok := w.Manager.GetChunk(coord)
	if !ok {
		return BlockNone
	}
	lx := FloorMod(pos.X, ChunkSize)
	lz := FloorMod(pos.Z, ChunkSize)
	t, found := c.GetBlockLocal(BlockPos{X: lx, Y: pos.Y, Z: lz})
	if !found {
		return BlockNone
	}
	return t
}

// HasBlock implements the engine's face-culling convention: a chunk that
// isn't resident is treated as solid ("unknown = solid"), so faces at the
// streaming edge of the loaded region are culled rather than flickering
// into view and back out. The subsequent mesh invalidation on chunk
// completion (see ChunkManager.ProcessPending) is what corrects this once
// the neighbor actually loads.
func (w *World) HasBlock(pos BlockPos) bool {
	coord := ChunkCoordFromBlock(pos)
	c, ok := w.Manager.GetChunk(coord)
	if !ok {
		return true
	}
	lx := FloorMod(pos.X, ChunkSize)
	lz := FloorMod(pos.Z, ChunkSize)
	return c.HasBlockAtLocal(BlockPos{X: lx, Y: pos.Y, Z: lz})
}

// invalidateBoundaryNeighbors invalidates the owning chunk's cardinal and
// diagonal neighbors when the written block sits on the chunk's boundary,
// since a face newly exposed or newly hidden there changes what those
// neighbors should cull.
func (w *World) invalidateBoundaryNeighbors(coord ChunkCoord, pos BlockPos) {
	lx := FloorMod(pos.X, ChunkSize)
	lz := FloorMod(pos.Z, ChunkSize)

	atLeft := lx == 0
	atRight := lx == ChunkSize-1
	atBack := lz == 0
	atFront := lz == ChunkSize-1

	if atLeft {
		w.invalidateChunk(coord.Left())
	}
	if atRight {
		w.invalidateChunk(coord.Right())
	}
	if atBack {
		w.invalidateChunk(coord.Back())
	}
	if atFront {
		w.invalidateChunk(coord.Front())
	}
	if atLeft && atBack {
		w.invalidateChunk(ChunkCoord{X: coord.X - 1, Z: coord.Z - 1})
	}
	if atLeft && atFront {
		w.invalidateChunk(ChunkCoord{X: coord.X - 1, Z: coord.Z + 1})
	}
	if atRight && atBack {
		w.invalidateChunk(ChunkCoord{X: coord.X + 1, Z: coord.Z - 1})
	}
	if atRight && atFront {
		w.invalidateChunk(ChunkCoord{X: coord.X + 1, Z: coord.Z + 1})
	}
}

func (w *World) invalidateChunk(coord ChunkCoord) {
	if c, ok := w.Manager.GetChunk(coord); ok {
		c.MarkDirty()
	}
}

// GetNearbyBlockPositions returns a snapshot of world-space block
// positions within chunkRadius chunks of (x, z), for the physics
// stepper's collision cache.
func (w *World) GetNearbyBlockPositions(x, z float64, chunkRadius int32) []BlockPos {
	center := ChunkCoordFromWorld(x, z)
	var out []BlockPos
	for dx := -chunkRadius; dx <= chunkRadius; dx++ {
		for dz := -chunkRadius; dz <= chunkRadius; dz++ {
			coord := ChunkCoord{X: center.X + dx, Z: center.Z + dz}
			c, ok := w.Manager.GetChunk(coord)
			if !ok {
				continue
			}
			ox := coord.WorldOriginX()
			oz := coord.WorldOriginZ()
			for _, local := range c.GetBlockPosSnapshot() {
				out = append(out, BlockPos{X: ox + local.X, Y: local.Y, Z: oz + local.Z})
			}
		}
	}
	return out
}

// UpdateChunks delegates to the manager's residency update.
func (w *World) UpdateChunks(x, z float64) {
	w.Manager.UpdateResidency(x, z)
}

// ProcessPendingChunks drains completed background chunks onto the main
// thread, invalidating the four cardinal neighbors of each.
func (w *World) ProcessPendingChunks() int {
	return w.Manager.ProcessPending(w.invalidateChunk)
}

// RebuildDirtyMeshes rebuilds geometry for every loaded Generated chunk
// that is dirty or has no mesh yet: it computes each visible block's 6-way visibility mask via
// HasBlock neighbor queries, drops fully-occluded blocks, runs the greedy
// mesher, and installs the resulting atlas-safe geometry.
func (w *World) RebuildDirtyMeshes() int {
	rebuilt := 0
	for _, c := range w.Manager.AllChunks() {
		if c.State() != ChunkGenerated && !(c.State() == ChunkMeshed && c.Dirty()) {
			continue
		}
		if !c.Dirty() && c.Mesh() != nil {
			continue
		}
		w.rebuildMesh(c)
		rebuilt++
	}
	return rebuilt
}

func (w *World) rebuildMesh(c *Chunk) {
	blocks := c.GetBlockDataSnapshot()
	ox := c.Coord.WorldOriginX()
	oz := c.Coord.WorldOriginZ()

	visible := make([]meshing.VisibleBlock, 0, len(blocks))
	for _, b := range blocks {
		wp := BlockPos{X: ox + b.Pos.X, Y: b.Pos.Y, Z: oz + b.Pos.Z}
		mask := w.visibilityMask(wp)
		if mask == [6]bool{} {
			continue // fully occluded: excluded from the mesh entirely
		}
		visible = append(visible, meshing.VisibleBlock{
			Pos:        meshing.IntVec3{X: int(b.Pos.X), Y: int(b.Pos.Y), Z: int(b.Pos.Z)},
			BlockType:  int32(b.Type),
			Visibility: mask,
		})
	}

	quads := meshing.BuildGreedyMesh(visible)
	verts, quadCount := meshing.BuildAtlasSafeMesh(quads, w.AtlasGridSize)

	origin := mgl32.Vec3{float32(ox), 0, float32(oz)}
	for i := 0; i+2 < len(verts); i += meshing.VertexStride {
		verts[i] += origin.X()
		verts[i+2] += origin.Z()
	}

	c.InstallMesh(&ChunkMesh{Vertices: verts, QuadCount: quadCount})
}

func (w *World) visibilityMask(wp BlockPos) [6]bool {
	var mask [6]bool
	faces := [6]BlockFace{FaceFront, FaceBack, FaceLeft, FaceRight, FaceTop, FaceBottom}
	for i, f := range faces {
		dx, dy, dz := f.Normal()
		neighbor := BlockPos{X: wp.X + dx, Y: wp.Y + dy, Z: wp.Z + dz}
		mask[i] = !w.HasBlock(neighbor)
	}
	return mask
}
