package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func flatTriangle() []Vertex3D {
	return []Vertex3D{
		{Position: NewVec3(0, 0, 0), Texcoord: NewVec2(0, 0)},
		{Position: NewVec3(1, 0, 0), Texcoord: NewVec2(1, 0)},
		{Position: NewVec3(0, 1, 0), Texcoord: NewVec2(0, 1)},
	}
}

func TestGeometryGenerateNormals(t *testing.T) {
	vertices := flatTriangle()
	indices := []uint32{0, 1, 2}

	GeometryGenerateNormals(3, vertices, 3, indices)

	// Counter-clockwise winding in the XY plane faces +Z.
	for _, vert := range vertices {
		assert.Equal(t, NewVec3(0, 0, 1), vert.Normal)
	}
}

func TestGeometryGenerateTangents(t *testing.T) {
	vertices := flatTriangle()
	indices := []uint32{0, 1, 2}

	out := GeometryGenerateTangents(3, vertices, 3, indices)

	for _, vert := range out {
		assert.InDelta(t, 1.0, kabs(vert.Tangent.X), 1e-6)
		assert.InDelta(t, 0.0, vert.Tangent.Y, 1e-6)
		assert.InDelta(t, 0.0, vert.Tangent.Z, 1e-6)
	}
}

func TestGeometryGenerateTangentsDegenerateUVs(t *testing.T) {
	vertices := flatTriangle()
	for i := range vertices {
		vertices[i].Texcoord = NewVec2(0.5, 0.5)
	}
	indices := []uint32{0, 1, 2}

	// Identical UVs give no tangent basis; the vertices stay untouched.
	out := GeometryGenerateTangents(3, vertices, 3, indices)
	for _, vert := range out {
		assert.Equal(t, NewVec3Zero(), vert.Tangent)
	}
}

func TestGeometryDeduplicateVertices(t *testing.T) {
	// A quad expanded into two triangles with repeated corners.
	v0 := Vertex3D{Position: NewVec3(0, 0, 0)}
	v1 := Vertex3D{Position: NewVec3(1, 0, 0)}
	v2 := Vertex3D{Position: NewVec3(1, 1, 0)}
	v3 := Vertex3D{Position: NewVec3(0, 1, 0)}
	vertices := []Vertex3D{v0, v1, v2, v0, v2, v3}
	indices := []uint32{0, 1, 2, 3, 4, 5}

	count, unique := GeometryDeduplicateVertices(6, vertices, 6, indices)

	assert.Equal(t, uint32(4), count)
	assert.Equal(t, []Vertex3D{v0, v1, v2, v3}, unique)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, indices)
}

func TestGeometryDeduplicateVerticesNoDuplicates(t *testing.T) {
	vertices := flatTriangle()
	indices := []uint32{0, 1, 2}

	count, unique := GeometryDeduplicateVertices(3, vertices, 3, indices)

	assert.Equal(t, uint32(3), count)
	assert.Equal(t, vertices, unique)
	assert.Equal(t, []uint32{0, 1, 2}, indices)
}

func TestVertex3dEqualTolerance(t *testing.T) {
	a := Vertex3D{Position: NewVec3(1, 2, 3)}
	b := a
	b.Position.X += K_FLOAT_EPSILON / 2

	assert.True(t, Vertex3dEqual(a, b))

	b.Position.X = 1.1
	assert.False(t, Vertex3dEqual(a, b))
}
