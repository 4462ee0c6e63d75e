package physics

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelite/world"
)

const (
	raycastMaxDistance = 10.0
	raycastStep        = 0.05
)

// RaycastResult reports a hit block, its entry face normal, and the
// adjacent placement position (block_pos + normal) used when placing a
// new block against the hit face.
type RaycastResult struct {
	Hit       bool
	BlockPos  world.BlockPos
	Normal    world.BlockPos
	Placement world.BlockPos
	Distance  float32
}

// Raycast marches from origin along direction in fixed raycastStep
// increments, testing each sample against an actual stored block via
// w.GetBlockType — not w.HasBlock, whose "unknown chunk = solid"
// face-culling convention would make the crosshair select phantom blocks
// in unloaded air at the streaming edge. On the first hit, the face
// normal is the axis of maximum absolute displacement of the sample from
// the hit block's center, signed to match that displacement — not a
// general voxel traversal, but sufficient for short-range block
// selection, and intentionally stepped finer than 1 unit to still catch
// grazing hits.
func Raycast(w *world.World, origin, direction mgl32.Vec3) RaycastResult {
	dir := direction.Normalize()
	prev := origin

	for dist := float32(0); dist < raycastMaxDistance; dist += raycastStep {
		current := origin.Add(dir.Mul(dist))
		bp := world.BlockPos{
			X: int32(roundHalfUp(current.X())),
			Y: int32(roundHalfUp(current.Y())),
			Z: int32(roundHalfUp(current.Z())),
		}
		if isPointInBlock(current, bp) && w.GetBlockType(bp) != world.BlockNone {
			normal := hitNormal(prev, bp)
			return RaycastResult{
				Hit:       true,
				BlockPos:  bp,
				Normal:    normal,
				Placement: bp.Add(normal.X, normal.Y, normal.Z),
				Distance:  dist,
			}
		}
		prev = current
	}
	return RaycastResult{Hit: false}
}

// isPointInBlock tests the closed interval [center-0.5, center+0.5] on
// every axis.
func isPointInBlock(p mgl32.Vec3, bp world.BlockPos) bool {
	return inRange(p.X(), float32(bp.X)) && inRange(p.Y(), float32(bp.Y)) && inRange(p.Z(), float32(bp.Z))
}

func inRange(v, center float32) bool {
	return v >= center-0.5 && v <= center+0.5
}

// hitNormal picks the axis of maximum absolute displacement of the
// previous sample from the hit block's center, X checked before Y before
// Z on ties, matching the reference engine's tie-break order exactly.
func hitNormal(prev mgl32.Vec3, bp world.BlockPos) world.BlockPos {
	dx := prev.X() - float32(bp.X)
	dy := prev.Y() - float32(bp.Y)
	dz := prev.Z() - float32(bp.Z)

	adx, ady, adz := abs32(dx), abs32(dy), abs32(dz)

	if adx >= ady && adx >= adz {
		return world.BlockPos{X: sign32(dx), Y: 0, Z: 0}
	}
	if ady >= adz {
		return world.BlockPos{X: 0, Y: sign32(dy), Z: 0}
	}
	return world.BlockPos{X: 0, Y: 0, Z: sign32(dz)}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func sign32(v float32) int32 {
	if v < 0 {
		return -1
	}
	return 1
}

func roundHalfUp(v float32) float32 {
	i := float32(int32(v))
	if v-i >= 0.5 {
		return i + 1
	}
	if v-i < -0.5 {
		return i - 1
	}
	return i
}
