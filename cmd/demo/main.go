// Command demo drives the engine headlessly for a fixed number of frames,
// exercising chunk bootstrap, residency streaming, and physics without
// any windowing, input, or GPU collaborator. It exists to give the
// library something concrete to run under, not as a playable client.
package main

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"voxelite/engine"
	"voxelite/physics"
	"voxelite/world"
)

func main() {
	cfg := engine.DefaultConfig()
	cfg.WorldSavePath = "demo-save"

	serializer := world.NewChunkSerializer(cfg.WorldSavePath)
	generator := world.NewNoiseGenerator(cfg.WorldSeed)
	policy := world.NewRadiusLoadPolicy(cfg.ChunkPreloadRadius+2, cfg.InitialChunkRadius, cfg.MaxLoadedChunks)

	manager := world.NewChunkManager(serializer, generator, policy, 1)
	spawnHeight, found := manager.GenerateInitialChunks(0, 0, cfg.InitialChunkRadius, cfg.ChunkPreloadRadius)
	if !found {
		spawnHeight = 4
	}
	manager.Start()
	defer manager.Shutdown()

	w := world.NewWorld(manager, cfg.AtlasGridSize, 1)

	player := physics.NewPlayer(mgl32.Vec3{0, float32(spawnHeight) + 2, 0})
	stepper := physics.NewPhysicsStepper(w, player)

	loop := engine.NewEngineLoop(w, stepper, player, nil, cfg)

	const frames = 300
	const dt = 1.0 / 60.0
	for i := 0; i < frames; i++ {
		loop.Update(dt)
	}

	log.Printf("spawn height sample: %d", spawnHeight)
	fmt.Printf("player settled at %.3f, %.3f, %.3f (onGround=%v)\n",
		player.Position.X(), player.Position.Y(), player.Position.Z(), player.OnGround)
}
