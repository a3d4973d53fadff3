package importer

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/modello/engine/assets"
	"github.com/spaghettifunk/modello/engine/math"
)

func pngBytes(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestImporter(t *testing.T, assetsDir string) *Importer {
	t.Helper()
	am, err := assets.NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(assetsDir))
	t.Cleanup(am.Shutdown)
	return New(nil, am)
}

// materialDocument wraps the triangle fixture with one material whose base
// colour texture references image 0.
func materialDocument(img *gltf.Image) *gltf.Document {
	doc := triangleDocument()
	doc.Images = []*gltf.Image{img}
	doc.Textures = []*gltf.Texture{{Source: idx(0)}}
	doc.Materials = []*gltf.Material{{
		Name: "painted",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
		},
	}}
	doc.Meshes[0].Primitives[0].Material = idx(0)
	return doc
}

func TestResolveTextureFromFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.png"), pngBytes(t, 2), 0o644))

	im := newTestImporter(t, dir)
	meshes, err := im.ImportDocument(materialDocument(&gltf.Image{URI: "base.png"}), dir, Options{})
	require.NoError(t, err)

	mat := meshes[0].Materials[0]
	assert.Equal(t, "painted", mat.Name)
	require.NotNil(t, mat.BaseColourMap)
	assert.Equal(t, uint32(2), mat.BaseColourMap.Texture.Width)
}

func TestResolveTextureFilePathWinsOverEmbedded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.png"), pngBytes(t, 2), 0o644))

	embedded := pngBytes(t, 4)
	doc := materialDocument(&gltf.Image{URI: "base.png", BufferView: idx(2)})
	doc.Buffers = append(doc.Buffers, &gltf.Buffer{ByteLength: uint32(len(embedded)), Data: embedded})
	doc.BufferViews = append(doc.BufferViews, &gltf.BufferView{Buffer: 1, ByteLength: uint32(len(embedded))})

	im := newTestImporter(t, dir)
	meshes, err := im.ImportDocument(doc, dir, Options{})
	require.NoError(t, err)

	// The 2x2 file on disk wins over the 4x4 embedded copy.
	mat := meshes[0].Materials[0]
	require.NotNil(t, mat.BaseColourMap)
	assert.Equal(t, uint32(2), mat.BaseColourMap.Texture.Width)
}

func TestResolveTextureFallsBackToBufferView(t *testing.T) {
	dir := t.TempDir()

	embedded := pngBytes(t, 4)
	doc := materialDocument(&gltf.Image{URI: "missing.png", BufferView: idx(2)})
	doc.Buffers = append(doc.Buffers, &gltf.Buffer{ByteLength: uint32(len(embedded)), Data: embedded})
	doc.BufferViews = append(doc.BufferViews, &gltf.BufferView{Buffer: 1, ByteLength: uint32(len(embedded))})

	im := newTestImporter(t, dir)
	meshes, err := im.ImportDocument(doc, dir, Options{})
	require.NoError(t, err)

	mat := meshes[0].Materials[0]
	require.NotNil(t, mat.BaseColourMap)
	assert.Equal(t, uint32(4), mat.BaseColourMap.Texture.Width)
}

func TestResolveTextureFromDataURI(t *testing.T) {
	dir := t.TempDir()
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 8))

	im := newTestImporter(t, dir)
	meshes, err := im.ImportDocument(materialDocument(&gltf.Image{URI: uri}), dir, Options{})
	require.NoError(t, err)

	mat := meshes[0].Materials[0]
	require.NotNil(t, mat.BaseColourMap)
	assert.Equal(t, uint32(8), mat.BaseColourMap.Texture.Width)
}

func TestResolveTextureFailureLeavesMapNil(t *testing.T) {
	dir := t.TempDir()

	doc := materialDocument(&gltf.Image{URI: "missing.png"})
	baseColour := [4]float64{1, 0, 0, 1}
	metallic := 0.25
	roughness := 0.5
	doc.Materials[0].PBRMetallicRoughness.BaseColorFactor = &baseColour
	doc.Materials[0].PBRMetallicRoughness.MetallicFactor = &metallic
	doc.Materials[0].PBRMetallicRoughness.RoughnessFactor = &roughness

	im := newTestImporter(t, dir)
	meshes, err := im.ImportDocument(doc, dir, Options{})
	require.NoError(t, err)

	// An unresolvable texture is not an error; the factors stand in.
	mat := meshes[0].Materials[0]
	assert.Nil(t, mat.BaseColourMap)
	assert.Equal(t, math.NewVec4(1, 0, 0, 1), mat.BaseColourFactor)
	assert.Equal(t, float32(0.25), mat.MetallicFactor)
	assert.Equal(t, float32(0.5), mat.RoughnessFactor)
}

func TestResolveMaterialWithoutAssetManager(t *testing.T) {
	im := New(nil, nil)

	meshes, err := im.ImportDocument(materialDocument(&gltf.Image{URI: "base.png"}), "", Options{})
	require.NoError(t, err)

	assert.Nil(t, meshes[0].Materials[0].BaseColourMap)
}

func TestResolveMaterialClampsFactors(t *testing.T) {
	doc := materialDocument(&gltf.Image{URI: "missing.png"})
	metallic := 2.0
	roughness := -0.5
	doc.Materials[0].PBRMetallicRoughness.MetallicFactor = &metallic
	doc.Materials[0].PBRMetallicRoughness.RoughnessFactor = &roughness

	im := New(nil, nil)
	meshes, err := im.ImportDocument(doc, "", Options{})
	require.NoError(t, err)

	mat := meshes[0].Materials[0]
	assert.Equal(t, float32(1), mat.MetallicFactor)
	assert.Equal(t, float32(0), mat.RoughnessFactor)
}

func TestResolveMaterialOcclusionStrength(t *testing.T) {
	doc := materialDocument(&gltf.Image{URI: "missing.png"})
	strength := 0.75
	doc.Materials[0].OcclusionTexture = &gltf.OcclusionTexture{Strength: &strength}

	im := New(nil, nil)
	meshes, err := im.ImportDocument(doc, "", Options{})
	require.NoError(t, err)

	mat := meshes[0].Materials[0]
	assert.Equal(t, float32(0.75), mat.OcclusionStrength)
	assert.Nil(t, mat.OcclusionMap)
}
