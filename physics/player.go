// Package physics steps a kinematic player body through a block field:
// fixed-timestep integration, axis-separated collision resolution with
// cliff-edge detection, and a short stepped raycaster for block
// selection.
package physics

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelite/world"
)

// Player dimensions, fixed per the engine's coordinate conventions: feet
// at Position.Y, eyes at Position.Y + EyeHeight.
const (
	Width     = 0.6
	Height    = 1.8
	EyeHeight = 1.62
)

// Player is a world-space kinematic body. Position and AABB must remain
// in lock-step: SetPosition is the only way to move a Player, and it
// always recomputes the bounding box.
type Player struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	OnGround bool
	Box      world.AABB
}

// NewPlayer places a player with its AABB already synchronized.
func NewPlayer(position mgl32.Vec3) *Player {
	p := &Player{Position: position}
	p.syncBox()
	return p
}

// SetPosition moves the player and resynchronizes its AABB so that
// Box.Center always equals (pos.x, pos.y + Height/2, pos.z).
func (p *Player) SetPosition(pos mgl32.Vec3) {
	p.Position = pos
	p.syncBox()
}

func (p *Player) syncBox() {
	center := mgl32.Vec3{p.Position.X(), p.Position.Y() + Height/2, p.Position.Z()}
	p.Box = world.NewAABB(center, mgl32.Vec3{Width / 2, Height / 2, Width / 2})
}

// EyePosition returns the camera-eye point.
func (p *Player) EyePosition() mgl32.Vec3 {
	return mgl32.Vec3{p.Position.X(), p.Position.Y() + EyeHeight, p.Position.Z()}
}

// TryJump sets vertical velocity to JumpVelocity and clears OnGround, but
// only if the player is currently grounded.
func (p *Player) TryJump() {
	if p.OnGround {
		p.Velocity = mgl32.Vec3{p.Velocity.X(), JumpVelocity, p.Velocity.Z()}
		p.OnGround = false
	}
}
