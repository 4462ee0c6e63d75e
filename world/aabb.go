package world

import "github.com/go-gl/mathgl/mgl32"

// minOverlapEpsilon gates axis-separated collision checks: two boxes touch
// on an axis only if their overlap on the *other* two axes exceeds this,
// distinguishing a face-aligned wall contact from a genuine same-axis hit.
const minOverlapEpsilon = 0.01

// AABB is an axis-aligned bounding box carrying both center/half-extents
// and the derived min/max, recomputed on every mutator so the hot-path
// intersection tests never allocate or reconstruct state.
type AABB struct {
	Center mgl32.Vec3
	Half   mgl32.Vec3
	Min    mgl32.Vec3
	Max    mgl32.Vec3
}

// NewAABB builds a box from its center and half-extents.
func NewAABB(center, half mgl32.Vec3) AABB {
	b := AABB{Center: center, Half: half}
	b.updateBounds()
	return b
}

// NewAABBFromMinMax builds a box from explicit corners.
func NewAABBFromMinMax(min, max mgl32.Vec3) AABB {
	center := min.Add(max).Mul(0.5)
	half := max.Sub(min).Mul(0.5)
	return NewAABB(center, half)
}

// UnitBlockAABB returns the AABB of the unit cube centered on a block
// position: bounds [x-0.5, x+0.5] on every axis.
func UnitBlockAABB(p BlockPos) AABB {
	return NewAABB(
		mgl32.Vec3{float32(p.X), float32(p.Y), float32(p.Z)},
		mgl32.Vec3{0.5, 0.5, 0.5},
	)
}

func (b *AABB) updateBounds() {
	b.Min = b.Center.Sub(b.Half)
	b.Max = b.Center.Add(b.Half)
}

// SetCenter moves the box, keeping its size.
func (b *AABB) SetCenter(center mgl32.Vec3) {
	b.Center = center
	b.updateBounds()
}

// SetSize changes the box's half-extents in place.
func (b *AABB) SetSize(hx, hy, hz float32) {
	b.Half = mgl32.Vec3{hx, hy, hz}
	b.updateBounds()
}

// Offset translates the box by a delta.
func (b *AABB) Offset(dx, dy, dz float32) {
	b.Center = b.Center.Add(mgl32.Vec3{dx, dy, dz})
	b.updateBounds()
}

// Intersects reports open-interval overlap on all three axes.
func (a AABB) Intersects(o AABB) bool {
	return a.Min.X() < o.Max.X() && a.Max.X() > o.Min.X() &&
		a.Min.Y() < o.Max.Y() && a.Max.Y() > o.Min.Y() &&
		a.Min.Z() < o.Max.Z() && a.Max.Z() > o.Min.Z()
}

// Axis names a single axis of a 3D AABB.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// IntersectsOn reports whether a and o overlap on axis AND overlap on the
// other two axes by strictly more than minOverlapEpsilon. This gating is
// what lets a player sliding flush along a wall register a same-axis hit
// without every near-miss at a shared face registering as one too.
func (a AABB) IntersectsOn(o AABB, axis Axis) bool {
	switch axis {
	case AxisX:
		if !(a.Min.X() < o.Max.X() && a.Max.X() > o.Min.X()) {
			return false
		}
		return overlapAmount(a.Min.Y(), a.Max.Y(), o.Min.Y(), o.Max.Y()) > minOverlapEpsilon &&
			overlapAmount(a.Min.Z(), a.Max.Z(), o.Min.Z(), o.Max.Z()) > minOverlapEpsilon
	case AxisY:
		if !(a.Min.Y() < o.Max.Y() && a.Max.Y() > o.Min.Y()) {
			return false
		}
		return overlapAmount(a.Min.X(), a.Max.X(), o.Min.X(), o.Max.X()) > minOverlapEpsilon &&
			overlapAmount(a.Min.Z(), a.Max.Z(), o.Min.Z(), o.Max.Z()) > minOverlapEpsilon
	case AxisZ:
		if !(a.Min.Z() < o.Max.Z() && a.Max.Z() > o.Min.Z()) {
			return false
		}
		return overlapAmount(a.Min.X(), a.Max.X(), o.Min.X(), o.Max.X()) > minOverlapEpsilon &&
			overlapAmount(a.Min.Y(), a.Max.Y(), o.Min.Y(), o.Max.Y()) > minOverlapEpsilon
	default:
		return false
	}
}

func overlapAmount(min1, max1, min2, max2 float32) float32 {
	lo := min1
	if min2 > lo {
		lo = min2
	}
	hi := max1
	if max2 < hi {
		hi = max2
	}
	return hi - lo
}
