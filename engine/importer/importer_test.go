package importer

import (
	"encoding/binary"
	m "math"
	"path/filepath"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/modello/engine/core"
	"github.com/spaghettifunk/modello/engine/math"
)

func idx(i uint32) *uint32 {
	return &i
}

func appendFloats(buf []byte, vals ...float32) []byte {
	for _, v := range vals {
		buf = binary.LittleEndian.AppendUint32(buf, m.Float32bits(v))
	}
	return buf
}

func appendUint16s(buf []byte, vals ...uint16) []byte {
	for _, v := range vals {
		buf = binary.LittleEndian.AppendUint16(buf, v)
	}
	return buf
}

// triangleDocument builds a single-buffer document holding one triangle in
// the XY plane: (0,0,0), (1,0,0), (0,1,0), indexed 0,1,2.
func triangleDocument() *gltf.Document {
	var buf []byte
	buf = appendFloats(buf, 0, 0, 0, 1, 0, 0, 0, 1, 0)
	buf = appendUint16s(buf, 0, 1, 2)

	return &gltf.Document{
		Buffers: []*gltf.Buffer{{ByteLength: uint32(len(buf)), Data: buf}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: 36},
			{Buffer: 0, ByteOffset: 36, ByteLength: 6},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: idx(0), ComponentType: gltf.ComponentFloat, Type: gltf.AccessorVec3, Count: 3},
			{BufferView: idx(1), ComponentType: gltf.ComponentUshort, Type: gltf.AccessorScalar, Count: 3},
		},
		Meshes: []*gltf.Mesh{{
			Name: "tri",
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]uint32{"POSITION": 0},
				Indices:    idx(1),
				Mode:       gltf.PrimitiveTriangles,
			}},
		}},
		Nodes:  []*gltf.Node{{Mesh: idx(0)}},
		Scenes: []*gltf.Scene{{Nodes: []uint32{0}}},
		Scene:  idx(0),
	}
}

func TestImportDocumentTriangle(t *testing.T) {
	im := New(nil, nil)

	meshes, err := im.ImportDocument(triangleDocument(), "", Options{})
	require.NoError(t, err)
	require.Len(t, meshes, 1)

	mesh := meshes[0]
	assert.Equal(t, "tri", mesh.Name)
	assert.Equal(t, uint32(3), mesh.VertexCount)
	assert.Len(t, mesh.VertexBuffer, 3*44)
	require.Len(t, mesh.Submeshes, 1)
	assert.Equal(t, uint32(3), mesh.Submeshes[0].IndexCount)
	assert.Equal(t, vk.IndexTypeUint16, mesh.Submeshes[0].IndexType)
	assert.Len(t, mesh.Submeshes[0].IndexBuffer, 6)

	// No material reference falls back to the default material.
	require.Len(t, mesh.Materials, 1)
	assert.Equal(t, 0, mesh.Submeshes[0].MaterialIndex)
	assert.Equal(t, "default", mesh.Materials[0].Name)

	assertVec3Near(t, math.NewVec3(0, 0, 0), mesh.Extents.Min)
	assertVec3Near(t, math.NewVec3(1, 1, 0), mesh.Extents.Max)
}

func TestImportDocumentGeneratesNormals(t *testing.T) {
	im := New(nil, nil)

	meshes, err := im.ImportDocument(triangleDocument(), "", Options{GenerateNormals: true})
	require.NoError(t, err)
	require.Len(t, meshes, 1)

	// The triangle is counter-clockwise in the XY plane.
	for _, vert := range meshes[0].Vertices {
		assertVec3Near(t, math.NewVec3(0, 0, 1), vert.Normal)
	}
}

func TestImportDocumentScale(t *testing.T) {
	im := New(nil, nil)

	meshes, err := im.ImportDocument(triangleDocument(), "", Options{Scale: 2.0})
	require.NoError(t, err)

	assertVec3Near(t, math.NewVec3(2, 2, 0), meshes[0].Extents.Max)
}

func TestImportDocumentAxisCorrection(t *testing.T) {
	doc := triangleDocument()
	// Swap the third vertex to (0,0,1) so the triangle stands in the XZ plane.
	copy(doc.Buffers[0].Data[24:36], appendFloats(nil, 0, 0, 1))

	im := New(nil, nil)
	meshes, err := im.ImportDocument(doc, "", Options{CorrectAxis: true})
	require.NoError(t, err)

	// The Z-up vertex lands on the Y axis.
	assertVec3Near(t, math.NewVec3(1, 1, 0), meshes[0].Extents.Max)
}

func TestImportDocumentCenterUsesUnionExtents(t *testing.T) {
	doc := triangleDocument()
	doc.Nodes = []*gltf.Node{
		{Mesh: idx(0)},
		{Mesh: idx(0), Translation: [3]float64{4, 0, 0}},
	}
	doc.Scenes[0].Nodes = []uint32{0, 1}

	im := New(nil, nil)
	meshes, err := im.ImportDocument(doc, "", Options{Center: true})
	require.NoError(t, err)
	require.Len(t, meshes, 2)

	// The union spans x [0,5], y [0,1]; its center (2.5, 0.5, 0) moves to
	// the origin. Each mesh keeps its offset from the shared center, so
	// neither is individually centered.
	assertVec3Near(t, math.NewVec3(-2.5, -0.5, 0), meshes[0].Extents.Min)
	assertVec3Near(t, math.NewVec3(-1.5, 0.5, 0), meshes[0].Extents.Max)
	assertVec3Near(t, math.NewVec3(1.5, -0.5, 0), meshes[1].Extents.Min)
	assertVec3Near(t, math.NewVec3(2.5, 0.5, 0), meshes[1].Extents.Max)
}

func TestImportDocumentNodeTransformFolded(t *testing.T) {
	doc := triangleDocument()
	doc.Nodes[0].Translation = [3]float64{10, 0, 0}

	im := New(nil, nil)
	meshes, err := im.ImportDocument(doc, "", Options{})
	require.NoError(t, err)

	assertVec3Near(t, math.NewVec3(10, 0, 0), meshes[0].Extents.Min)
	assertVec3Near(t, math.NewVec3(11, 1, 0), meshes[0].Extents.Max)
}

func TestImportDocumentEmpty(t *testing.T) {
	im := New(nil, nil)

	_, err := im.ImportDocument(&gltf.Document{}, "", Options{})
	assert.ErrorIs(t, err, core.ErrEmptyAsset)
}

func TestImportDocumentNormalCountMismatch(t *testing.T) {
	doc := triangleDocument()
	doc.Accessors = append(doc.Accessors, &gltf.Accessor{
		BufferView: idx(0), ComponentType: gltf.ComponentFloat, Type: gltf.AccessorVec3, Count: 2,
	})
	doc.Meshes[0].Primitives[0].Attributes["NORMAL"] = 2

	im := New(nil, nil)
	_, err := im.ImportDocument(doc, "", Options{})
	assert.ErrorIs(t, err, core.ErrMeshBuildFailed)
}

func TestImportDocumentMaterialIndexOutOfRange(t *testing.T) {
	doc := triangleDocument()
	doc.Meshes[0].Primitives[0].Material = idx(3)

	im := New(nil, nil)
	_, err := im.ImportDocument(doc, "", Options{})
	assert.ErrorIs(t, err, core.ErrMeshBuildFailed)
}

func TestImportDocumentIndexOutOfRange(t *testing.T) {
	doc := triangleDocument()
	// Corrupt the index buffer to point past the vertex data.
	binary.LittleEndian.PutUint16(doc.Buffers[0].Data[36:], 9)

	im := New(nil, nil)
	_, err := im.ImportDocument(doc, "", Options{})
	assert.ErrorIs(t, err, core.ErrMeshBuildFailed)
}

func TestImportDocumentNonTrianglePrimitive(t *testing.T) {
	doc := triangleDocument()
	doc.Meshes[0].Primitives[0].Mode = gltf.PrimitiveLines

	im := New(nil, nil)
	_, err := im.ImportDocument(doc, "", Options{})
	assert.ErrorIs(t, err, core.ErrMeshBuildFailed)
}

func TestImportDocumentNoSceneFallsBackToMeshList(t *testing.T) {
	doc := triangleDocument()
	doc.Nodes = nil
	doc.Scenes = nil
	doc.Scene = nil

	im := New(nil, nil)
	meshes, err := im.ImportDocument(doc, "", Options{})
	require.NoError(t, err)
	assert.Len(t, meshes, 1)
}

func TestImportFileUnknownExtension(t *testing.T) {
	im := New(nil, nil)

	_, err := im.ImportFile(filepath.Join(t.TempDir(), "model.fbx"), Options{})
	assert.ErrorIs(t, err, core.ErrUnsupportedAsset)
}

func TestImportFileMissingGLTF(t *testing.T) {
	im := New(nil, nil)

	_, err := im.ImportFile(filepath.Join(t.TempDir(), "missing.gltf"), Options{})
	assert.ErrorIs(t, err, core.ErrUnsupportedAsset)
}

func TestDefaultOptionsFollowConfig(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.CorrectAxis = true
	cfg.Scale = 0.25

	im := New(cfg, nil)
	opts := im.DefaultOptions()

	assert.True(t, opts.CorrectAxis)
	assert.True(t, opts.GenerateNormals)
	assert.Equal(t, float32(0.25), opts.Scale)
	assert.Nil(t, opts.Layout)
}
