package world

import "voxelite/internal/noise"

// NoiseGenerator is the example ChunkGenerator shipped alongside the
// engine: a flat, rolling heightmap with a single surface block type per
// column. Terrain generation is a caller-supplied collaborator; embedders
// are expected to bring their own, richer generator, and this one exists
// so the demo and tests have something concrete to drive against.
type NoiseGenerator struct {
	heights *noise.Heightmap
	seed    int64
}

// NewNoiseGenerator builds a generator seeded for deterministic worlds.
func NewNoiseGenerator(seed int64) *NoiseGenerator {
	return &NoiseGenerator{
		heights: noise.NewHeightmap(seed, 0.02, 4, 6),
		seed:    seed,
	}
}

// Generate fills a chunk's column heights with defaultBlockType at and
// below the sampled surface height. Called from a background worker; it
// must not read or write any state the manager hasn't exclusively handed
// it, and it only touches the Chunk instance it is given.
func (g *NoiseGenerator) Generate(c *Chunk, defaultBlockType BlockType) {
	ox := c.Coord.WorldOriginX()
	oz := c.Coord.WorldOriginZ()
	for lx := int32(0); lx < ChunkSize; lx++ {
		for lz := int32(0); lz < ChunkSize; lz++ {
			wx := float64(ox + lx)
			wz := float64(oz + lz)
			h := int32(g.heights.HeightAt(wx, wz))
			for y := int32(0); y <= h; y++ {
				c.SetBlockLocal(BlockPos{X: lx, Y: y, Z: lz}, defaultBlockType)
			}
		}
	}
	c.SetState(ChunkGenerated)
}

// FlatGroundGenerator fills every column at a single fixed Y, matching the
// auto_create_ground configuration option: a trivially deterministic
// generator useful for tests and headless demos.
type FlatGroundGenerator struct {
	GroundY int32
}

func (g FlatGroundGenerator) Generate(c *Chunk, defaultBlockType BlockType) {
	for lx := int32(0); lx < ChunkSize; lx++ {
		for lz := int32(0); lz < ChunkSize; lz++ {
			c.SetBlockLocal(BlockPos{X: lx, Y: g.GroundY, Z: lz}, defaultBlockType)
		}
	}
	c.SetState(ChunkGenerated)
}
