// Package engine orchestrates the per-frame update/render cycle and
// carries the plain-struct configuration the rest of the engine is
// parameterized by.
package engine

import (
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"voxelite/world"
)

// Config is a plain struct with sensible defaults, deliberately not a
// fluent builder: configuration parsing and builder ergonomics are out of
// this engine's scope, but a plain options bag with defaults is not.
type Config struct {
	TextureAtlasPath string `yaml:"texture_atlas_path"`
	AtlasGridSize    int    `yaml:"atlas_grid_size"`

	PlayerStart      mgl32.Vec3 `yaml:"-"`
	PlayerMoveSpeed  float32    `yaml:"player_move_speed"`
	FieldOfView      float32    `yaml:"field_of_view"`
	InitialPitch     float32    `yaml:"initial_pitch"`
	MouseSensitivity float32    `yaml:"mouse_sensitivity"`

	Gravity          float64 `yaml:"gravity"`
	JumpVelocity     float64 `yaml:"jump_velocity"`
	TerminalVelocity float64 `yaml:"terminal_velocity"`

	InitialChunkRadius int32  `yaml:"initial_chunk_radius"`
	ChunkPreloadRadius int32  `yaml:"chunk_preload_radius"`
	WorldSavePath      string `yaml:"world_save_path"`

	DefaultGroundBlockType world.BlockType `yaml:"-"`
	WorldSeed              int64           `yaml:"world_seed"`
	AutoCreateGround       bool            `yaml:"auto_create_ground"`

	ChunkUpdateInterval float64 `yaml:"-"`
	MaxLoadedChunks     int     `yaml:"max_loaded_chunks"`
}

// DefaultConfig returns the engine's documented defaults.
func DefaultConfig() Config {
	return Config{
		TextureAtlasPath:       "",
		AtlasGridSize:          world.AtlasGrid,
		PlayerStart:            mgl32.Vec3{0, -0.5, 0},
		PlayerMoveSpeed:        5,
		FieldOfView:            67,
		InitialPitch:           -20,
		MouseSensitivity:       0.1,
		Gravity:                -20,
		JumpVelocity:           7,
		TerminalVelocity:       -50,
		InitialChunkRadius:     16,
		ChunkPreloadRadius:     1,
		WorldSavePath:          "saves/world1",
		DefaultGroundBlockType: world.BlockTypeAir,
		WorldSeed:              0,
		AutoCreateGround:       true,
		ChunkUpdateInterval:    0.05,
		MaxLoadedChunks:        400,
	}
}

// LoadConfigFile reads a YAML document on top of DefaultConfig, so a
// partial file only overrides the fields it names.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
