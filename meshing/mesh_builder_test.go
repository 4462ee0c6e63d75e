package meshing

import "testing"

// vertexAt returns the i'th vertex (0-indexed) of verts as its 8 stride
// fields: x, y, z, nx, ny, nz, u, v.
func vertexAt(verts []float32, i int) (x, y, z, nx, ny, nz, u, v float32) {
	o := i * VertexStride
	return verts[o], verts[o+1], verts[o+2], verts[o+3], verts[o+4], verts[o+5], verts[o+6], verts[o+7]
}

func TestAtlasSafeEmissionProducesNineUnitQuadsSameTile(t *testing.T) {
	quads := BuildGreedyMesh(threeByThreeTopSlab(5))
	if len(quads) != 1 {
		t.Fatalf("setup: expected a single merged rectangle, got %d", len(quads))
	}

	const gridSize = 16
	verts, count := BuildAtlasSafeMesh(quads, gridSize)
	if count != 9 {
		t.Fatalf("expected 9 unit quads for a 3x3 merged rectangle, got %d", count)
	}

	wantVertexCount := count * 6 // two triangles per quad, 3 verts each
	if len(verts)/VertexStride != wantVertexCount {
		t.Fatalf("expected %d vertices, got %d", wantVertexCount, len(verts)/VertexStride)
	}

	wantU0, wantV0, wantU1, wantV1 := tileUV(5, gridSize)

	for i := 0; i < wantVertexCount; i++ {
		_, _, _, _, _, _, u, v := vertexAt(verts, i)
		if u != wantU0 && u != wantU1 {
			t.Fatalf("vertex %d: u=%f not on either tile edge (%f, %f)", i, u, wantU0, wantU1)
		}
		if v != wantV0 && v != wantV1 {
			t.Fatalf("vertex %d: v=%f not on either tile edge (%f, %f)", i, v, wantV0, wantV1)
		}
	}
}

func TestAtlasSafeEmissionUVNeverCrossesATileBoundary(t *testing.T) {
	const gridSize = 16
	tile := float32(1.0 / gridSize)

	blocks := threeByThreeTopSlab(40) // blockType 40 sits on a non-origin tile
	quads := BuildGreedyMesh(blocks)
	verts, count := BuildAtlasSafeMesh(quads, gridSize)

	u0, v0, u1, v1 := tileUV(40, gridSize)
	for i := 0; i < count*6; i++ {
		_, _, _, _, _, _, u, v := vertexAt(verts, i)
		if u < u0-1e-6 || u > u1+1e-6 {
			t.Fatalf("vertex %d: u=%f escapes tile [%f, %f]", i, u, u0, u1)
		}
		if v < v0-1e-6 || v > v1+1e-6 {
			t.Fatalf("vertex %d: v=%f escapes tile [%f, %f]", i, v, v0, v1)
		}
	}
	if u1-u0 > tile+1e-6 {
		t.Fatalf("tile width %f exceeds one grid cell %f", u1-u0, tile)
	}
}

func TestAtlasSafeEmissionNormalsPointOutward(t *testing.T) {
	var vis [6]bool
	vis[DirTop] = true
	quads := BuildGreedyMesh([]VisibleBlock{{Pos: IntVec3{0, 0, 0}, BlockType: 1, Visibility: vis}})
	verts, count := BuildAtlasSafeMesh(quads, 16)
	if count != 1 {
		t.Fatalf("expected a single unit quad, got %d", count)
	}
	for i := 0; i < 6; i++ {
		_, _, _, nx, ny, nz, _, _ := vertexAt(verts, i)
		if nx != 0 || ny != 1 || nz != 0 {
			t.Fatalf("vertex %d: expected Top normal (0,1,0), got (%f,%f,%f)", i, nx, ny, nz)
		}
	}
}

func BenchmarkBuildAtlasSafeMeshFullTopLayer(b *testing.B) {
	var blocks []VisibleBlock
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			var vis [6]bool
			vis[DirTop] = true
			blocks = append(blocks, VisibleBlock{Pos: IntVec3{X: x, Y: 0, Z: z}, BlockType: 1, Visibility: vis})
		}
	}
	quads := BuildGreedyMesh(blocks)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = BuildAtlasSafeMesh(quads, 16)
	}
}
