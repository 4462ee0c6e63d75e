package world

import (
	"fmt"
	"math"
)

// ChunkCoord is the integer (cx, cz) index of a 16x16 chunk column.
type ChunkCoord struct {
	X, Z int32
}

// ChunkCoordFromWorld converts a world-space horizontal position to the
// chunk that contains it. Uses plain floor(v/ChunkSize) division — chunk
// coordinates are themselves allowed to be negative, so this is not the
// floor-mod conversion used for in-chunk local coordinates.
func ChunkCoordFromWorld(worldX, worldZ float64) ChunkCoord {
	return ChunkCoord{
		X: int32(math.Floor(worldX / ChunkSize)),
		Z: int32(math.Floor(worldZ / ChunkSize)),
	}
}

// ChunkCoordFromBlock converts a BlockPos to its owning chunk coordinate.
func ChunkCoordFromBlock(p BlockPos) ChunkCoord {
	return ChunkCoord{
		X: FloorDiv(p.X, ChunkSize),
		Z: FloorDiv(p.Z, ChunkSize),
	}
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Z)
}

// Left, Right, Front, Back are the four cardinal neighbors.
// Front is +Z, Back is -Z, matching the engine's canonical face directions.
func (c ChunkCoord) Left() ChunkCoord  { return ChunkCoord{c.X - 1, c.Z} }
func (c ChunkCoord) Right() ChunkCoord { return ChunkCoord{c.X + 1, c.Z} }
func (c ChunkCoord) Front() ChunkCoord { return ChunkCoord{c.X, c.Z + 1} }
func (c ChunkCoord) Back() ChunkCoord  { return ChunkCoord{c.X, c.Z - 1} }

// Corners returns the four diagonal neighbors, in (-x,-z) (-x,+z) (+x,-z) (+x,+z) order.
func (c ChunkCoord) Corners() [4]ChunkCoord {
	return [4]ChunkCoord{
		{c.X - 1, c.Z - 1},
		{c.X - 1, c.Z + 1},
		{c.X + 1, c.Z - 1},
		{c.X + 1, c.Z + 1},
	}
}

// WorldOriginX and WorldOriginZ are the world-space coordinates of this
// chunk's (0,0,*) corner.
func (c ChunkCoord) WorldOriginX() int32 { return c.X * ChunkSize }
func (c ChunkCoord) WorldOriginZ() int32 { return c.Z * ChunkSize }
