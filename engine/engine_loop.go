package engine

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelite/internal/perf"
	"voxelite/physics"
	"voxelite/world"
)

// CameraController is the collaborator that turns raw input into a view
// direction; the engine only needs its current look direction, which it
// uses together with the Player's eye position to drive the raycaster.
type CameraController interface {
	LookDirection() mgl32.Vec3
}

// Renderer is the collaborator that actually draws; the engine hands it a
// frustum-filtered mesh list and the currently selected block.
type Renderer interface {
	RenderFrame(meshes []*world.ChunkMesh, selected physics.RaycastResult)
}

// Frustum is supplied by the embedder's camera each frame; ContainsAABB
// decides which chunk meshes survive culling.
type Frustum interface {
	ContainsAABB(box world.AABB) bool
}

// EngineLoop orchestrates tick-rate chunk residency updates, pending
// chunk drain, the physics accumulator, raycasting, and dirty-mesh
// rebuilds, independent of frame rate.
type EngineLoop struct {
	World    *world.World
	Physics  *physics.PhysicsStepper
	Player   *physics.Player
	Camera   CameraController
	Config   Config

	tickAccumulator float64
	lastSelected    physics.RaycastResult
}

// NewEngineLoop wires the per-frame orchestrator around an already
// constructed world, physics stepper, and player.
func NewEngineLoop(w *world.World, stepper *physics.PhysicsStepper, player *physics.Player, camera CameraController, cfg Config) *EngineLoop {
	return &EngineLoop{World: w, Physics: stepper, Player: player, Camera: camera, Config: cfg}
}

// Update advances chunk residency (tick-gated), drains pending chunks
// every call, steps physics, and refreshes the raycast selection.
func (e *EngineLoop) Update(dt float64) {
	done := perf.Track("engine_update")
	defer done()

	e.tickAccumulator += dt
	if e.tickAccumulator >= e.Config.ChunkUpdateInterval {
		e.World.UpdateChunks(float64(e.Player.Position.X()), float64(e.Player.Position.Z()))
		e.tickAccumulator -= e.Config.ChunkUpdateInterval
	}

	e.World.ProcessPendingChunks()

	e.Physics.Update(dt)

	if e.Camera != nil {
		e.lastSelected = physics.Raycast(e.World, e.Player.EyePosition(), e.Camera.LookDirection())
	}
}

// Selected returns the most recent raycast result computed by Update.
func (e *EngineLoop) Selected() physics.RaycastResult {
	return e.lastSelected
}

// Render rebuilds any dirty chunk meshes, culls the rest by frustum, and
// hands the surviving mesh list plus the current selection to the
// collaborator renderer.
func (e *EngineLoop) Render(frustum Frustum, renderer Renderer) {
	done := perf.Track("engine_render")
	defer done()

	e.World.RebuildDirtyMeshes()

	var visible []*world.ChunkMesh
	for _, c := range e.World.Manager.AllChunks() {
		if frustum != nil && !frustum.ContainsAABB(c.Bounds()) {
			continue
		}
		if m := c.Mesh(); m != nil {
			visible = append(visible, m)
			if c.State() == world.ChunkMeshed {
				c.SetState(world.ChunkActive)
			}
		}
	}

	if renderer != nil {
		renderer.RenderFrame(visible, e.lastSelected)
	}
}
