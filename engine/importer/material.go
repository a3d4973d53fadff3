package importer

import (
	"bytes"
	"encoding/base64"
	"image"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/spaghettifunk/modello/engine/core"
	"github.com/spaghettifunk/modello/engine/math"
	"github.com/spaghettifunk/modello/engine/renderer/metadata"
)

// resolveGLTFMaterial maps one source material onto the flat result struct.
// Scalar factors are always populated; texture slots stay nil when nothing
// resolves, which is the signal for a renderer to use the factors instead.
func (im *Importer) resolveGLTFMaterial(doc *gltf.Document, baseDir string, src *gltf.Material) *metadata.Material {
	mat := metadata.DefaultMaterial()
	if src.Name != "" {
		mat.Name = src.Name
	}

	if pbr := src.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			mat.BaseColourFactor = math.NewVec4(
				float32(pbr.BaseColorFactor[0]),
				float32(pbr.BaseColorFactor[1]),
				float32(pbr.BaseColorFactor[2]),
				float32(pbr.BaseColorFactor[3]),
			)
		}
		if pbr.MetallicFactor != nil {
			mat.MetallicFactor = math.Clamp(float32(*pbr.MetallicFactor), 0, 1)
		}
		if pbr.RoughnessFactor != nil {
			mat.RoughnessFactor = math.Clamp(float32(*pbr.RoughnessFactor), 0, 1)
		}
		if pbr.BaseColorTexture != nil {
			if texture := im.resolveTexture(doc, baseDir, pbr.BaseColorTexture.Index); texture != nil {
				mat.BaseColourMap = metadata.NewTextureMap(texture, metadata.TextureUseMapBaseColour)
			}
		}
		if pbr.MetallicRoughnessTexture != nil {
			if texture := im.resolveTexture(doc, baseDir, pbr.MetallicRoughnessTexture.Index); texture != nil {
				mat.MetallicRoughnessMap = metadata.NewTextureMap(texture, metadata.TextureUseMapMetallicRoughness)
			}
		}
	}

	if src.NormalTexture != nil && src.NormalTexture.Index != nil {
		if texture := im.resolveTexture(doc, baseDir, *src.NormalTexture.Index); texture != nil {
			mat.NormalMap = metadata.NewTextureMap(texture, metadata.TextureUseMapNormal)
		}
	}
	if src.OcclusionTexture != nil {
		if src.OcclusionTexture.Strength != nil {
			mat.OcclusionStrength = math.Clamp(float32(*src.OcclusionTexture.Strength), 0, 1)
		}
		if src.OcclusionTexture.Index != nil {
			if texture := im.resolveTexture(doc, baseDir, *src.OcclusionTexture.Index); texture != nil {
				mat.OcclusionMap = metadata.NewTextureMap(texture, metadata.TextureUseMapOcclusion)
			}
		}
	}
	if src.EmissiveTexture != nil {
		if texture := im.resolveTexture(doc, baseDir, src.EmissiveTexture.Index); texture != nil {
			mat.EmissiveMap = metadata.NewTextureMap(texture, metadata.TextureUseMapEmissive)
		}
	}

	return mat
}

// resolveTexture tries, in priority order: a file-path image reference, an
// embedded buffer-view image, and finally an in-memory image conversion of
// a data URI. A failure at every step yields nil, never an error; the
// material's scalar factors cover for a missing map.
func (im *Importer) resolveTexture(doc *gltf.Document, baseDir string, textureIndex uint32) *metadata.Texture {
	if im.assets == nil {
		return nil
	}
	if int(textureIndex) >= len(doc.Textures) {
		core.LogDebug("texture index %d out of range, skipping", textureIndex)
		return nil
	}
	src := doc.Textures[textureIndex]
	if src.Source == nil || int(*src.Source) >= len(doc.Images) {
		return nil
	}
	img := doc.Images[*src.Source]

	// 1) File-path reference, resolved against the asset's own directory
	// first and the configured search paths after.
	if img.URI != "" && !strings.HasPrefix(img.URI, "data:") {
		texture, err := im.assets.AcquireTexture(filepath.Join(baseDir, img.URI))
		if err != nil {
			texture, err = im.assets.AcquireTexture(img.URI)
		}
		if err == nil {
			return texture
		}
		core.LogDebug("texture %q did not resolve from disk: %v", img.URI, err)
	}

	// 2) Embedded image behind a buffer view.
	if img.BufferView != nil {
		if data := imageBufferView(doc, *img.BufferView); data != nil {
			texture, err := im.assets.AcquireTextureFromMemory(img.Name, data)
			if err == nil {
				return texture
			}
			core.LogDebug("embedded texture %q did not decode: %v", img.Name, err)
		}
	}

	// 3) In-memory conversion of a data URI payload.
	if strings.HasPrefix(img.URI, "data:") {
		if decoded := decodeDataURI(img.URI); decoded != nil {
			texture, err := im.assets.AcquireTextureFromImage(img.Name, decoded)
			if err == nil {
				return texture
			}
			core.LogDebug("data-uri texture %q did not convert: %v", img.Name, err)
		}
	}

	return nil
}

func imageBufferView(doc *gltf.Document, viewIndex uint32) []byte {
	if int(viewIndex) >= len(doc.BufferViews) {
		return nil
	}
	view := doc.BufferViews[viewIndex]
	if int(view.Buffer) >= len(doc.Buffers) {
		return nil
	}
	buffer := doc.Buffers[view.Buffer]
	start := int(view.ByteOffset)
	end := start + int(view.ByteLength)
	if end > len(buffer.Data) {
		return nil
	}
	return buffer.Data[start:end]
}

func decodeDataURI(uri string) image.Image {
	_, payload, found := strings.Cut(uri, ",")
	if !found {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil
	}
	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return decoded
}
