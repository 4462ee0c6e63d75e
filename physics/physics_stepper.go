package physics

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelite/internal/perf"
	"voxelite/world"
)

// Fixed-timestep physics constants, matching the engine's reference
// tuning exactly.
const (
	Gravity            = -20.0
	JumpVelocity       = 7.0
	TerminalVelocity   = -50.0
	FixedTimestep      = 1.0 / 60.0
	MaxFrameTime       = 0.25
	PhysicsChunkRadius = 1
	CollisionMargin    = 0.001
	MinOverlap         = 0.01
	GroundThreshold    = 0.02
	MinXZOverlap       = 0.1
)

// PhysicsStepper drives a Player through a World using an accumulator
// pattern: incoming frame deltas are clamped and added to an accumulator,
// and Step is called repeatedly at FixedTimestep until the remainder is
// smaller than one step.
type PhysicsStepper struct {
	World  *world.World
	accum  float64
	player *Player

	nearbyBlocks     []world.BlockPos
	lastChunk        world.ChunkCoord
	haveLastChunk    bool
	cacheInvalidated bool
}

// NewPhysicsStepper builds a stepper bound to a world and the player it
// will move.
func NewPhysicsStepper(w *world.World, p *Player) *PhysicsStepper {
	return &PhysicsStepper{World: w, player: p}
}

// InvalidateCache forces the nearby-block cache to refresh on the next
// step even if the player's chunk hasn't changed, for callers that just
// mutated blocks near the player.
func (s *PhysicsStepper) InvalidateCache() {
	s.cacheInvalidated = true
}

// Update clamps dt to MaxFrameTime, accumulates it, and runs as many
// FixedTimestep steps as the accumulator allows, carrying any remainder
// to the next call.
func (s *PhysicsStepper) Update(dt float64) {
	done := perf.Track("physics_update")
	defer done()

	if dt > MaxFrameTime {
		dt = MaxFrameTime
	}
	s.accum += dt
	for s.accum >= FixedTimestep {
		s.step(FixedTimestep)
		s.accum -= FixedTimestep
	}
}

func (s *PhysicsStepper) refreshCacheIfNeeded() {
	px, pz := s.player.Position.X(), s.player.Position.Z()
	chunk := world.ChunkCoordFromWorld(float64(px), float64(pz))
	if s.haveLastChunk && chunk == s.lastChunk && !s.cacheInvalidated {
		return
	}
	s.nearbyBlocks = s.World.GetNearbyBlockPositions(float64(px), float64(pz), PhysicsChunkRadius)
	s.lastChunk = chunk
	s.haveLastChunk = true
	s.cacheInvalidated = false
}

func (s *PhysicsStepper) step(dt float64) {
	s.refreshCacheIfNeeded()

	p := s.player
	if !p.OnGround {
		vy := p.Velocity.Y() + Gravity*float32(dt)
		if vy < TerminalVelocity {
			vy = TerminalVelocity
		}
		p.Velocity = mgl32.Vec3{p.Velocity.X(), vy, p.Velocity.Z()}
	}

	dx := p.Velocity.X() * float32(dt)
	dy := p.Velocity.Y() * float32(dt)
	dz := p.Velocity.Z() * float32(dt)

	s.stepY(dy)
	if dy == 0 {
		s.checkCliffEdge()
	}
	s.stepX(dx)
	s.stepZ(dz)
}

func (s *PhysicsStepper) stepY(dy float32) {
	p := s.player
	p.SetPosition(mgl32.Vec3{p.Position.X(), p.Position.Y() + dy, p.Position.Z()})

	for _, pos := range s.nearbyBlocks {
		block := world.UnitBlockAABB(pos)
		if !p.Box.IntersectsOn(block, world.AxisY) {
			continue
		}
		if dy > 0 {
			newY := block.Min.Y() - Height
			p.SetPosition(mgl32.Vec3{p.Position.X(), newY, p.Position.Z()})
			p.OnGround = false
		} else if dy < 0 {
			newY := block.Max.Y()
			p.SetPosition(mgl32.Vec3{p.Position.X(), newY, p.Position.Z()})
			p.OnGround = true
		}
		p.Velocity = mgl32.Vec3{p.Velocity.X(), 0, p.Velocity.Z()}
		return
	}
	if dy < 0 {
		p.OnGround = false
	}
}

// checkCliffEdge clears OnGround when, after a zero-dy Y step, no cached
// block's top lies within GroundThreshold below the player with
// sufficient X/Z overlap. Only called when dy was exactly zero, and never
// re-run after the X/Z steps, to avoid state flicker at block seams.
func (s *PhysicsStepper) checkCliffEdge() {
	p := s.player
	if !p.OnGround {
		return
	}
	for _, pos := range s.nearbyBlocks {
		block := world.UnitBlockAABB(pos)
		gap := p.Box.Min.Y() - block.Max.Y()
		if gap < 0 || gap > GroundThreshold {
			continue
		}
		xOverlap := overlap1D(p.Box.Min.X(), p.Box.Max.X(), block.Min.X(), block.Max.X())
		zOverlap := overlap1D(p.Box.Min.Z(), p.Box.Max.Z(), block.Min.Z(), block.Max.Z())
		if xOverlap > MinXZOverlap && zOverlap > MinXZOverlap {
			return
		}
	}
	p.OnGround = false
}

func overlap1D(min1, max1, min2, max2 float32) float32 {
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

func (s *PhysicsStepper) stepX(dx float32) {
	p := s.player
	p.SetPosition(mgl32.Vec3{p.Position.X() + dx, p.Position.Y(), p.Position.Z()})

	for _, pos := range s.nearbyBlocks {
		block := world.UnitBlockAABB(pos)
		if !p.Box.IntersectsOn(block, world.AxisX) {
			continue
		}
		var newX float32
		if dx > 0 {
			newX = block.Min.X() - Width/2 - CollisionMargin
		} else {
			newX = block.Max.X() + Width/2 + CollisionMargin
		}
		p.SetPosition(mgl32.Vec3{newX, p.Position.Y(), p.Position.Z()})
		p.Velocity = mgl32.Vec3{0, p.Velocity.Y(), p.Velocity.Z()}
		return
	}
}

func (s *PhysicsStepper) stepZ(dz float32) {
	p := s.player
	p.SetPosition(mgl32.Vec3{p.Position.X(), p.Position.Y(), p.Position.Z() + dz})

	for _, pos := range s.nearbyBlocks {
		block := world.UnitBlockAABB(pos)
		if !p.Box.IntersectsOn(block, world.AxisZ) {
			continue
		}
		var newZ float32
		if dz > 0 {
			newZ = block.Min.Z() - Width/2 - CollisionMargin
		} else {
			newZ = block.Max.Z() + Width/2 + CollisionMargin
		}
		p.SetPosition(mgl32.Vec3{p.Position.X(), p.Position.Y(), newZ})
		p.Velocity = mgl32.Vec3{p.Velocity.X(), p.Velocity.Y(), 0}
		return
	}
}
