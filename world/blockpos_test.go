package world

import "testing"

func TestFloorModRange(t *testing.T) {
	for n := int32(-1000); n <= 1000; n++ {
		got := FloorMod(n, 16)
		if got < 0 || got >= 16 {
			t.Fatalf("FloorMod(%d, 16) = %d, want value in [0,16)", n, got)
		}
		want := ((n % 16) + 16) % 16
		if got != want {
			t.Fatalf("FloorMod(%d, 16) = %d, want %d", n, got, want)
		}
	}
}

func TestFloorModNaiveDiffersAtNegative(t *testing.T) {
	// Demonstrates why sign-naive % is wrong: Go's % can return negative
	// results for negative operands, which is never a valid local coordinate.
	n := int32(-1)
	if n%16 >= 0 {
		t.Fatalf("expected naive %%16 of -1 to be negative for this test to be meaningful")
	}
	if got := FloorMod(n, 16); got != 15 {
		t.Fatalf("FloorMod(-1, 16) = %d, want 15", got)
	}
}

func TestFloorDivConsistentWithFloorMod(t *testing.T) {
	for n := int32(-1000); n <= 1000; n++ {
		q := FloorDiv(n, 16)
		r := FloorMod(n, 16)
		if q*16+r != n {
			t.Fatalf("FloorDiv/FloorMod inconsistent for n=%d: q=%d r=%d", n, q, r)
		}
	}
}

func TestChunkCoordFromBlock(t *testing.T) {
	cases := []struct {
		pos  BlockPos
		want ChunkCoord
	}{
		{BlockPos{X: 0, Y: 0, Z: 0}, ChunkCoord{0, 0}},
		{BlockPos{X: 15, Y: 0, Z: 15}, ChunkCoord{0, 0}},
		{BlockPos{X: 16, Y: 0, Z: 0}, ChunkCoord{1, 0}},
		{BlockPos{X: -1, Y: 0, Z: -1}, ChunkCoord{-1, -1}},
		{BlockPos{X: -16, Y: 0, Z: 0}, ChunkCoord{-1, 0}},
		{BlockPos{X: -17, Y: 0, Z: 0}, ChunkCoord{-2, 0}},
	}
	for _, c := range cases {
		if got := ChunkCoordFromBlock(c.pos); got != c.want {
			t.Errorf("ChunkCoordFromBlock(%v) = %v, want %v", c.pos, got, c.want)
		}
	}
}
