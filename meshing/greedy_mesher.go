// Package meshing builds per-chunk renderable geometry from a set of
// visible blocks: a greedy rectangle merge per face direction, followed
// by an atlas-safe split back into unit quads. It knows nothing about
// chunks, coordinates systems, or residency — callers hand it plain
// integer positions and a precomputed 6-way visibility mask, matching the
// decoupling between "what faces are visible" (World's job) and "how to
// turn visible faces into triangles" (this package's job).
package meshing

// IntVec3 is a plain integer position, independent of any world-package
// coordinate type, so this package has no dependency on world.
type IntVec3 struct {
	X, Y, Z int
}

// Direction identifies one of the six face directions, in the engine's
// canonical order.
type Direction int

const (
	DirFront  Direction = iota // +Z
	DirBack                    // -Z
	DirLeft                    // -X
	DirRight                   // +X
	DirTop                     // +Y
	DirBottom                  // -Y
)

// VisibleBlock is one input cell: a position, its block type, and which of
// its six faces (in canonical Front/Back/Left/Right/Top/Bottom order) are
// exposed to a non-solid neighbor.
type VisibleBlock struct {
	Pos        IntVec3
	BlockType  int32
	Visibility [6]bool
}

// MergedQuad is one maximal same-type, same-direction rectangle produced
// by the greedy merge.
type MergedQuad struct {
	Origin    IntVec3
	Width     int
	Height    int
	BlockType int32
	Direction Direction
}

type planeKey struct{ u, v int }

// BuildGreedyMesh merges coplanar, same-type, same-visibility unit faces
// into maximal axis-aligned rectangles, independently for each of the six
// face directions. Traversal order is fixed (outer sweep axis ascending,
// then the two in-plane axes ascending) so identical inputs always yield
// an identical rectangle sequence.
func BuildGreedyMesh(blocks []VisibleBlock) []MergedQuad {
	if len(blocks) == 0 {
		return nil
	}

	lookup := make(map[IntVec3]VisibleBlock, len(blocks))
	minX, maxX := blocks[0].Pos.X, blocks[0].Pos.X
	minY, maxY := blocks[0].Pos.Y, blocks[0].Pos.Y
	minZ, maxZ := blocks[0].Pos.Z, blocks[0].Pos.Z
	for _, b := range blocks {
		lookup[b.Pos] = b
		if b.Pos.X < minX {
			minX = b.Pos.X
		}
		if b.Pos.X > maxX {
			maxX = b.Pos.X
		}
		if b.Pos.Y < minY {
			minY = b.Pos.Y
		}
		if b.Pos.Y > maxY {
			maxY = b.Pos.Y
		}
		if b.Pos.Z < minZ {
			minZ = b.Pos.Z
		}
		if b.Pos.Z > maxZ {
			maxZ = b.Pos.Z
		}
	}

	var quads []MergedQuad
	quads = append(quads, mergeAlongZ(lookup, minX, maxX, minY, maxY, minZ, maxZ, DirFront, 0)...)
	quads = append(quads, mergeAlongZ(lookup, minX, maxX, minY, maxY, minZ, maxZ, DirBack, 1)...)
	quads = append(quads, mergeAlongX(lookup, minX, maxX, minY, maxY, minZ, maxZ, DirLeft, 2)...)
	quads = append(quads, mergeAlongX(lookup, minX, maxX, minY, maxY, minZ, maxZ, DirRight, 3)...)
	quads = append(quads, mergeAlongY(lookup, minX, maxX, minY, maxY, minZ, maxZ, DirTop, 4)...)
	quads = append(quads, mergeAlongY(lookup, minX, maxX, minY, maxY, minZ, maxZ, DirBottom, 5)...)
	return quads
}

// mergeAlongZ handles Front/Back: sweeps planes of constant Z, merging
// width along X then height along Y.
func mergeAlongZ(lookup map[IntVec3]VisibleBlock, minX, maxX, minY, maxY, minZ, maxZ int, dir Direction, visIdx int) []MergedQuad {
	var quads []MergedQuad
	for z := minZ; z <= maxZ; z++ {
		visited := make(map[planeKey]bool)
		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				if visited[planeKey{x, y}] {
					continue
				}
				b, ok := lookup[IntVec3{x, y, z}]
				if !ok || !b.Visibility[visIdx] {
					continue
				}
				width := 1
				for x+width <= maxX {
					nb, ok2 := lookup[IntVec3{x + width, y, z}]
					if !ok2 || !nb.Visibility[visIdx] || nb.BlockType != b.BlockType || visited[planeKey{x + width, y}] {
						break
					}
					width++
				}
				height := 1
			growHeightZ:
				for y+height <= maxY {
					for xx := x; xx < x+width; xx++ {
						nb, ok2 := lookup[IntVec3{xx, y + height, z}]
						if !ok2 || !nb.Visibility[visIdx] || nb.BlockType != b.BlockType || visited[planeKey{xx, y + height}] {
							break growHeightZ
						}
					}
					height++
				}
				markVisited(visited, x, x+width, y, y+height)
				quads = append(quads, MergedQuad{Origin: IntVec3{x, y, z}, Width: width, Height: height, BlockType: b.BlockType, Direction: dir})
			}
		}
	}
	return quads
}

// mergeAlongX handles Left/Right: sweeps planes of constant X, merging
// width along Z then height along Y.
func mergeAlongX(lookup map[IntVec3]VisibleBlock, minX, maxX, minY, maxY, minZ, maxZ int, dir Direction, visIdx int) []MergedQuad {
	var quads []MergedQuad
	for x := minX; x <= maxX; x++ {
		visited := make(map[planeKey]bool)
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				if visited[planeKey{z, y}] {
					continue
				}
				b, ok := lookup[IntVec3{x, y, z}]
				if !ok || !b.Visibility[visIdx] {
					continue
				}
				width := 1
				for z+width <= maxZ {
					nb, ok2 := lookup[IntVec3{x, y, z + width}]
					if !ok2 || !nb.Visibility[visIdx] || nb.BlockType != b.BlockType || visited[planeKey{z + width, y}] {
						break
					}
					width++
				}
				height := 1
			growHeightX:
				for y+height <= maxY {
					for zz := z; zz < z+width; zz++ {
						nb, ok2 := lookup[IntVec3{x, y + height, zz}]
						if !ok2 || !nb.Visibility[visIdx] || nb.BlockType != b.BlockType || visited[planeKey{zz, y + height}] {
							break growHeightX
						}
					}
					height++
				}
				markVisited(visited, z, z+width, y, y+height)
				quads = append(quads, MergedQuad{Origin: IntVec3{x, y, z}, Width: width, Height: height, BlockType: b.BlockType, Direction: dir})
			}
		}
	}
	return quads
}

// mergeAlongY handles Top/Bottom: sweeps planes of constant Y, merging
// width along X then depth along Z.
func mergeAlongY(lookup map[IntVec3]VisibleBlock, minX, maxX, minY, maxY, minZ, maxZ int, dir Direction, visIdx int) []MergedQuad {
	var quads []MergedQuad
	for y := minY; y <= maxY; y++ {
		visited := make(map[planeKey]bool)
		for z := minZ; z <= maxZ; z++ {
			for x := minX; x <= maxX; x++ {
				if visited[planeKey{x, z}] {
					continue
				}
				b, ok := lookup[IntVec3{x, y, z}]
				if !ok || !b.Visibility[visIdx] {
					continue
				}
				width := 1
				for x+width <= maxX {
					nb, ok2 := lookup[IntVec3{x + width, y, z}]
					if !ok2 || !nb.Visibility[visIdx] || nb.BlockType != b.BlockType || visited[planeKey{x + width, z}] {
						break
					}
					width++
				}
				depth := 1
			growDepthY:
				for z+depth <= maxZ {
					for xx := x; xx < x+width; xx++ {
						nb, ok2 := lookup[IntVec3{xx, y, z + depth}]
						if !ok2 || !nb.Visibility[visIdx] || nb.BlockType != b.BlockType || visited[planeKey{xx, z + depth}] {
							break growDepthY
						}
					}
					depth++
				}
				markVisited(visited, x, x+width, z, z+depth)
				quads = append(quads, MergedQuad{Origin: IntVec3{x, y, z}, Width: width, Height: depth, BlockType: b.BlockType, Direction: dir})
			}
		}
	}
	return quads
}

func markVisited(visited map[planeKey]bool, uLo, uHi, vLo, vHi int) {
	for v := vLo; v < vHi; v++ {
		for u := uLo; u < uHi; u++ {
			visited[planeKey{u, v}] = true
		}
	}
}
