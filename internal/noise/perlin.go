// Package noise wraps a third-party Perlin noise generator for terrain
// helpers. It is not part of the engine's public surface: terrain
// generation is a caller-supplied collaborator, and this package backs
// only the example generator offered alongside it.
package noise

import "github.com/aquilax/go-perlin"

// Heightmap produces smooth, seeded 2D height values using multi-octave
// Perlin noise.
type Heightmap struct {
	p          *perlin.Perlin
	scale      float64
	baseHeight float64
	amplitude  float64
}

// NewHeightmap builds a heightmap generator. alpha/beta/octaves tune the
// perlin.Perlin instance per github.com/aquilax/go-perlin's constructor;
// 2.0/2.0/3 are reasonable general-purpose defaults for rolling terrain.
func NewHeightmap(seed int64, scale, baseHeight, amplitude float64) *Heightmap {
	return &Heightmap{
		p:          perlin.NewPerlin(2.0, 2.0, 3, seed),
		scale:      scale,
		baseHeight: baseHeight,
		amplitude:  amplitude,
	}
}

// HeightAt returns the terrain height at a world X/Z column.
func (h *Heightmap) HeightAt(x, z float64) float64 {
	n := h.p.Noise2D(x*h.scale, z*h.scale)
	return h.baseHeight + n*h.amplitude
}
