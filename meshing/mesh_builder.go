package meshing

// VertexStride is the number of float32 values per emitted vertex:
// position.xyz, normal.xyz, uv.xy.
const VertexStride = 8

// defaultAtlasGrid mirrors world.AtlasGrid without importing the world
// package (meshing must stay a leaf: world depends on meshing, not the
// other way around).
const defaultAtlasGrid = 16

// BuildAtlasSafeMesh expands each merged rectangle back into width*height
// individual unit quads, each carrying the full tile UV for its block
// type, and emits them as a flat triangle-list vertex buffer in
// chunk-local coordinates. This trades vertex count for atlas
// correctness: no sub-quad's UV rectangle ever crosses a tile boundary.
//
// Returns the vertex buffer and the number of unit quads emitted.
func BuildAtlasSafeMesh(quads []MergedQuad, atlasGridSize int) ([]float32, int) {
	grid := atlasGridSize
	if grid <= 0 {
		grid = defaultAtlasGrid
	}

	verts := make([]float32, 0, len(quads)*VertexStride*6)
	count := 0

	for _, q := range quads {
		u0, v0, u1, v1 := tileUV(q.BlockType, grid)
		for i := 0; i < q.Width; i++ {
			for j := 0; j < q.Height; j++ {
				verts = appendUnitQuad(verts, q, i, j, u0, v0, u1, v1)
				count++
			}
		}
	}
	return verts, count
}

func tileUV(blockType int32, grid int) (u0, v0, u1, v1 float32) {
	col := int(blockType) % grid
	row := int(blockType) / grid
	tile := 1.0 / float32(grid)
	u0 = float32(col) * tile
	v0 = float32(row) * tile
	return u0, v0, u0 + tile, v0 + tile
}

// appendUnitQuad emits one unit-sized quad (two CCW-outward-facing
// triangles) for sub-cell (i, j) of a merged rectangle, in the plane and
// offset appropriate to its direction.
func appendUnitQuad(verts []float32, q MergedQuad, i, j int, u0, v0, u1, v1 float32) []float32 {
	var cx, cy, cz float32 // sub-quad center
	var nx, ny, nz float32

	switch q.Direction {
	case DirFront, DirBack:
		cx = float32(q.Origin.X+i)
		cy = float32(q.Origin.Y+j)
		cz = float32(q.Origin.Z)
		if q.Direction == DirFront {
			cz += 0.5
			nx, ny, nz = 0, 0, 1
		} else {
			cz -= 0.5
			nx, ny, nz = 0, 0, -1
		}
		return emitPlaneXY(verts, cx, cy, cz, nx, ny, nz, q.Direction == DirFront, u0, v0, u1, v1)

	case DirLeft, DirRight:
		cz = float32(q.Origin.Z + i)
		cy = float32(q.Origin.Y + j)
		cx = float32(q.Origin.X)
		if q.Direction == DirRight {
			cx += 0.5
			nx, ny, nz = 1, 0, 0
		} else {
			cx -= 0.5
			nx, ny, nz = -1, 0, 0
		}
		return emitPlaneZY(verts, cx, cy, cz, nx, ny, nz, q.Direction == DirRight, u0, v0, u1, v1)

	default: // DirTop, DirBottom
		cx = float32(q.Origin.X + i)
		cz = float32(q.Origin.Z + j)
		cy = float32(q.Origin.Y)
		if q.Direction == DirTop {
			cy += 0.5
			nx, ny, nz = 0, 1, 0
		} else {
			cy -= 0.5
			nx, ny, nz = 0, -1, 0
		}
		return emitPlaneXZ(verts, cx, cy, cz, nx, ny, nz, q.Direction == DirTop, u0, v0, u1, v1)
	}
}

func emitPlaneXY(verts []float32, cx, cy, cz, nx, ny, nz float32, outwardPositive bool, u0, v0, u1, v1 float32) []float32 {
	x0, x1 := cx-0.5, cx+0.5
	y0, y1 := cy-0.5, cy+0.5
	if outwardPositive {
		return appendTriangles(verts,
			vtx{x0, y0, cz, nx, ny, nz, u0, v0},
			vtx{x1, y0, cz, nx, ny, nz, u1, v0},
			vtx{x1, y1, cz, nx, ny, nz, u1, v1},
			vtx{x0, y1, cz, nx, ny, nz, u0, v1},
		)
	}
	return appendTriangles(verts,
		vtx{x1, y0, cz, nx, ny, nz, u0, v0},
		vtx{x0, y0, cz, nx, ny, nz, u1, v0},
		vtx{x0, y1, cz, nx, ny, nz, u1, v1},
		vtx{x1, y1, cz, nx, ny, nz, u0, v1},
	)
}

func emitPlaneZY(verts []float32, cx, cy, cz, nx, ny, nz float32, outwardPositive bool, u0, v0, u1, v1 float32) []float32 {
	z0, z1 := cz-0.5, cz+0.5
	y0, y1 := cy-0.5, cy+0.5
	if outwardPositive {
		return appendTriangles(verts,
			vtx{cx, y0, z1, nx, ny, nz, u0, v0},
			vtx{cx, y0, z0, nx, ny, nz, u1, v0},
			vtx{cx, y1, z0, nx, ny, nz, u1, v1},
			vtx{cx, y1, z1, nx, ny, nz, u0, v1},
		)
	}
	return appendTriangles(verts,
		vtx{cx, y0, z0, nx, ny, nz, u0, v0},
		vtx{cx, y0, z1, nx, ny, nz, u1, v0},
		vtx{cx, y1, z1, nx, ny, nz, u1, v1},
		vtx{cx, y1, z0, nx, ny, nz, u0, v1},
	)
}

func emitPlaneXZ(verts []float32, cx, cy, cz, nx, ny, nz float32, outwardPositive bool, u0, v0, u1, v1 float32) []float32 {
	x0, x1 := cx-0.5, cx+0.5
	z0, z1 := cz-0.5, cz+0.5
	if outwardPositive {
		return appendTriangles(verts,
			vtx{x0, cy, z1, nx, ny, nz, u0, v0},
			vtx{x1, cy, z1, nx, ny, nz, u1, v0},
			vtx{x1, cy, z0, nx, ny, nz, u1, v1},
			vtx{x0, cy, z0, nx, ny, nz, u0, v1},
		)
	}
	return appendTriangles(verts,
		vtx{x0, cy, z0, nx, ny, nz, u0, v0},
		vtx{x1, cy, z0, nx, ny, nz, u1, v0},
		vtx{x1, cy, z1, nx, ny, nz, u1, v1},
		vtx{x0, cy, z1, nx, ny, nz, u0, v1},
	)
}

type vtx struct {
	x, y, z, nx, ny, nz, u, v float32
}

// appendTriangles splits a CCW quad (v0,v1,v2,v3) into two triangles
// (v0,v1,v2) and (v2,v3,v0).
func appendTriangles(verts []float32, v0, v1, v2, v3 vtx) []float32 {
	push := func(v vtx) {
		verts = append(verts, v.x, v.y, v.z, v.nx, v.ny, v.nz, v.u, v.v)
	}
	push(v0)
	push(v1)
	push(v2)
	push(v2)
	push(v3)
	push(v0)
	return verts
}
