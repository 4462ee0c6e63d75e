package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"voxelite/world"
)

// Scenario 5: a single block at (0,0,5), ray from the origin along +Z,
// must report the hit, the face it entered through, and the adjacent
// placement cell.
func TestRaycastHitReportsEntryFaceAndPlacement(t *testing.T) {
	w := flatGroundWorld(t, -1000, 1000) // ground far below: an otherwise-empty field to cast across
	w.AddBlock(world.BlockPos{X: 0, Y: 0, Z: 5}, world.BlockType(2))

	result := Raycast(w, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 1})

	require.True(t, result.Hit)
	require.Equal(t, world.BlockPos{X: 0, Y: 0, Z: 5}, result.BlockPos)
	require.Equal(t, world.BlockPos{X: 0, Y: 0, Z: -1}, result.Normal)
	require.Equal(t, world.BlockPos{X: 0, Y: 0, Z: 4}, result.Placement)
}

func TestRaycastMissesBeyondMaxDistance(t *testing.T) {
	w := flatGroundWorld(t, -1000, 1000)
	w.AddBlock(world.BlockPos{X: 0, Y: 0, Z: 50}, world.BlockType(2))

	result := Raycast(w, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 1})

	require.False(t, result.Hit, "a block 50 units away is well beyond the 10-unit raycast range")
}

func TestRaycastMissesWrongDirection(t *testing.T) {
	w := flatGroundWorld(t, -1000, 1000)
	w.AddBlock(world.BlockPos{X: 0, Y: 0, Z: 5}, world.BlockType(2))

	result := Raycast(w, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0})

	require.False(t, result.Hit)
}

func BenchmarkRaycastMiss(b *testing.B) {
	dir := b.TempDir()
	gen := world.FlatGroundGenerator{GroundY: -1000}
	policy := world.NewRadiusLoadPolicy(3, 0, 1000)
	m := world.NewChunkManager(world.NewChunkSerializer(dir), gen, policy, world.BlockType(1))
	m.UpdateResidency(0, 0)
	for _, c := range m.AllChunks() {
		gen.Generate(c, world.BlockType(1))
	}
	w := world.NewWorld(m, world.AtlasGrid, world.BlockType(1))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Raycast(w, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 1})
	}
}
