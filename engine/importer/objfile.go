package importer

import (
	"fmt"
	"path/filepath"

	"github.com/g3n/engine/loader/obj"

	"github.com/spaghettifunk/modello/engine/core"
	"github.com/spaghettifunk/modello/engine/math"
	"github.com/spaghettifunk/modello/engine/renderer/metadata"
)

// extractOBJ decodes a Wavefront OBJ/MTL pair into the intermediate mesh
// list. Face corners are expanded into flat vertices and marked for the
// dedup pass, since the same position/uv/normal triplet repeats across faces.
func (im *Importer) extractOBJ(path string) ([]*rawMesh, []*metadata.Material, error) {
	dec, err := obj.Decode(path, "")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", core.ErrUnsupportedAsset, err)
	}

	baseDir := filepath.Dir(path)

	var materials []*metadata.Material
	materialIndexByName := make(map[string]int)
	materialIndexFor := func(name string) int {
		if name == "" {
			return -1
		}
		if idx, ok := materialIndexByName[name]; ok {
			return idx
		}
		src, ok := dec.Materials[name]
		if !ok {
			core.LogDebug("obj material %q not found in material library", name)
			materialIndexByName[name] = -1
			return -1
		}
		idx := len(materials)
		materials = append(materials, im.convertOBJMaterial(src, baseDir))
		materialIndexByName[name] = idx
		return idx
	}

	var meshes []*rawMesh
	for oi := range dec.Objects {
		object := &dec.Objects[oi]
		if len(object.Faces) == 0 {
			continue
		}

		name := object.Name
		if name == "" {
			name = fmt.Sprintf("object_%d", oi)
		}
		raw := &rawMesh{
			name:        name,
			hasNormals:  true,
			hasTangents: false,
			deduplicate: true,
		}

		// One primitive per referenced material, in first-use order.
		primIndexByMaterial := make(map[int]int)

		for fi := range object.Faces {
			face := &object.Faces[fi]
			if len(face.Vertices) < 3 {
				return nil, nil, fmt.Errorf("%w: object %q face %d has %d vertices", core.ErrMeshBuildFailed, name, fi, len(face.Vertices))
			}

			matIdx := materialIndexFor(face.Material)
			pi, ok := primIndexByMaterial[matIdx]
			if !ok {
				pi = len(raw.primitives)
				raw.primitives = append(raw.primitives, rawPrimitive{materialIndex: matIdx})
				primIndexByMaterial[matIdx] = pi
			}

			corner := func(idx int) (uint32, error) {
				vert, hasNormal, err := im.objCorner(dec, face, idx)
				if err != nil {
					return 0, fmt.Errorf("%w: object %q face %d: %v", core.ErrMeshBuildFailed, name, fi, err)
				}
				if !hasNormal {
					raw.hasNormals = false
				}
				raw.vertices = append(raw.vertices, vert)
				return uint32(len(raw.vertices) - 1), nil
			}

			// Triangle-fan expansion handles quads and n-gons alike.
			for idx := 2; idx < len(face.Vertices); idx++ {
				i0, err := corner(0)
				if err != nil {
					return nil, nil, err
				}
				i1, err := corner(idx - 1)
				if err != nil {
					return nil, nil, err
				}
				i2, err := corner(idx)
				if err != nil {
					return nil, nil, err
				}
				raw.primitives[pi].indices = append(raw.primitives[pi].indices, i0, i1, i2)
			}
		}

		meshes = append(meshes, raw)
	}

	return meshes, materials, nil
}

// objCorner builds one flat vertex from a face corner. The second return
// reports whether the corner carried a usable normal reference.
func (im *Importer) objCorner(dec *obj.Decoder, face *obj.Face, idx int) (math.Vertex3D, bool, error) {
	var vert math.Vertex3D

	vi := face.Vertices[idx]
	if vi < 0 || 3*vi+2 >= len(dec.Vertices) {
		return vert, false, fmt.Errorf("vertex index %d out of range", vi)
	}
	vert.Position = math.NewVec3(dec.Vertices[3*vi], dec.Vertices[3*vi+1], dec.Vertices[3*vi+2])

	hasNormal := false
	if idx < len(face.Normals) {
		if ni := face.Normals[idx]; ni >= 0 && 3*ni+2 < len(dec.Normals) {
			vert.Normal = math.NewVec3(dec.Normals[3*ni], dec.Normals[3*ni+1], dec.Normals[3*ni+2])
			hasNormal = true
		}
	}

	if idx < len(face.Uvs) {
		if ti := face.Uvs[idx]; ti >= 0 && 2*ti+1 < len(dec.Uvs) {
			vert.Texcoord = math.NewVec2(dec.Uvs[2*ti], dec.Uvs[2*ti+1])
		}
	}

	return vert, hasNormal, nil
}

// convertOBJMaterial maps an MTL entry onto the flat material struct. Only
// the diffuse channel has a home: Kd becomes the base colour factor and
// map_Kd the base colour texture.
func (im *Importer) convertOBJMaterial(src *obj.Material, baseDir string) *metadata.Material {
	mat := metadata.DefaultMaterial()
	if src.Name != "" {
		mat.Name = src.Name
	}

	alpha := src.Opacity
	if alpha == 0 {
		alpha = 1.0
	}
	mat.BaseColourFactor = math.NewVec4(src.Diffuse.R, src.Diffuse.G, src.Diffuse.B, alpha)

	if src.MapKd != "" && im.assets != nil {
		texture, err := im.assets.AcquireTexture(filepath.Join(baseDir, src.MapKd))
		if err != nil {
			texture, err = im.assets.AcquireTexture(src.MapKd)
		}
		if err == nil {
			mat.BaseColourMap = metadata.NewTextureMap(texture, metadata.TextureUseMapBaseColour)
		} else {
			core.LogDebug("obj texture %q did not resolve: %v", src.MapKd, err)
		}
	}

	return mat
}
