package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/spaghettifunk/modello/engine/assets"
	"github.com/spaghettifunk/modello/engine/core"
	"github.com/spaghettifunk/modello/engine/math"
	"github.com/spaghettifunk/modello/engine/renderer/metadata"
)

/**
 * @brief Per-import options. The zero value imports with no corrections,
 * no attribute generation, and the stock vertex layout.
 */
type Options struct {
	/** @brief Generate face normals when the source has none. */
	GenerateNormals bool
	/** @brief Generate tangents when the source has none. */
	GenerateTangents bool
	/** @brief Rotate Z-up assets into the Y-up convention. */
	CorrectAxis bool
	/** @brief Translate so the union bounding box of all meshes is centered at the origin. */
	Center bool
	/** @brief Uniform scale factor. Zero is treated as 1.0. */
	Scale float32
	/** @brief The vertex layout to pack buffers with. Nil selects the default layout. */
	Layout *metadata.VertexLayout
}

/**
 * @brief Loads model files and repackages their geometry, materials and
 * textures into GPU-ready buffers. Construction-and-return only; all
 * loading is synchronous and blocks the calling goroutine.
 */
type Importer struct {
	config *core.Config
	assets *assets.AssetManager
}

// rawMesh is the format-independent intermediate the extractors produce:
// flattened vertex data with node transforms already folded in.
type rawMesh struct {
	name        string
	vertices    []math.Vertex3D
	hasNormals  bool
	hasTangents bool
	primitives  []rawPrimitive
	// OBJ-style expanded corner lists benefit from a dedup pass.
	deduplicate bool
}

type rawPrimitive struct {
	indices       []uint32
	materialIndex int
}

func New(config *core.Config, assetManager *assets.AssetManager) *Importer {
	if config == nil {
		config = core.DefaultConfig()
	}
	return &Importer{
		config: config,
		assets: assetManager,
	}
}

// DefaultOptions derives an option set from the importer configuration.
func (im *Importer) DefaultOptions() Options {
	return Options{
		GenerateNormals:  im.config.GenerateNormals,
		GenerateTangents: im.config.GenerateTangents,
		CorrectAxis:      im.config.CorrectAxis,
		Center:           im.config.Center,
		Scale:            im.config.Scale,
	}
}

/**
 * @brief Imports the model file at path and returns one GPU-ready mesh per
 * source mesh instance.
 *
 * @param path The model file. The extension selects the format.
 * @param opts The import options.
 * @return The imported meshes, or one of ErrUnsupportedAsset,
 * ErrEmptyAsset, ErrMeshBuildFailed.
 */
func (im *Importer) ImportFile(path string, opts Options) ([]*metadata.ImportedMesh, error) {
	var (
		meshes    []*rawMesh
		materials []*metadata.Material
		err       error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		doc, openErr := gltf.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrUnsupportedAsset, openErr)
		}
		return im.ImportDocument(doc, filepath.Dir(path), opts)
	case ".obj":
		meshes, materials, err = im.extractOBJ(path)
	default:
		return nil, fmt.Errorf("%w: unknown extension %q", core.ErrUnsupportedAsset, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	return im.build(meshes, materials, opts)
}

/**
 * @brief Imports an already parsed glTF document. Relative texture
 * references resolve against baseDir.
 */
func (im *Importer) ImportDocument(doc *gltf.Document, baseDir string, opts Options) ([]*metadata.ImportedMesh, error) {
	meshes, materials, err := im.extractGLTF(doc, baseDir)
	if err != nil {
		return nil, err
	}
	return im.build(meshes, materials, opts)
}

// build runs the shared tail of the pipeline: transform corrections,
// attribute generation and buffer packaging.
func (im *Importer) build(meshes []*rawMesh, materials []*metadata.Material, opts Options) ([]*metadata.ImportedMesh, error) {
	if len(meshes) == 0 {
		return nil, core.ErrEmptyAsset
	}

	layout := opts.Layout
	if layout == nil {
		layout = metadata.DefaultVertexLayout()
	}
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMeshBuildFailed, err)
	}

	// Rotation and scale first. The centering translation depends on the
	// extents measured after those two, so it is applied separately below.
	rotScale := ComposeRootTransform(opts.CorrectAxis, opts.Scale, math.NewVec3Zero())
	identity := math.NewMat4Identity()
	if rotScale != identity {
		for _, mesh := range meshes {
			applyTransform(mesh.vertices, rotScale)
		}
	}

	if opts.Center {
		union := math.NewExtents3DEmpty()
		for _, mesh := range meshes {
			for _, v := range mesh.vertices {
				union = union.Expand(v.Position)
			}
		}
		offset := union.Center().MulScalar(-1)
		if offset != math.NewVec3Zero() {
			translation := math.NewMat4Translation(offset)
			for _, mesh := range meshes {
				applyTransform(mesh.vertices, translation)
			}
		}
	}

	out := make([]*metadata.ImportedMesh, 0, len(meshes))
	for _, mesh := range meshes {
		built, err := im.buildMesh(mesh, materials, opts, layout)
		if err != nil {
			return nil, err
		}
		out = append(out, built)
	}
	return out, nil
}

func (im *Importer) buildMesh(mesh *rawMesh, materials []*metadata.Material, opts Options, layout *metadata.VertexLayout) (*metadata.ImportedMesh, error) {
	if len(mesh.vertices) == 0 || len(mesh.primitives) == 0 {
		return nil, fmt.Errorf("%w: mesh %q has no geometry", core.ErrMeshBuildFailed, mesh.name)
	}

	vertices := mesh.vertices
	vertexCount := uint32(len(vertices))

	// All primitive index lists combined, used by the generation passes.
	var allIndices []uint32
	for _, prim := range mesh.primitives {
		allIndices = append(allIndices, prim.indices...)
	}
	for _, idx := range allIndices {
		if idx >= vertexCount {
			return nil, fmt.Errorf("%w: mesh %q index %d out of range (%d vertices)", core.ErrMeshBuildFailed, mesh.name, idx, vertexCount)
		}
	}

	if opts.GenerateNormals && !mesh.hasNormals {
		math.GeometryGenerateNormals(vertexCount, vertices, uint32(len(allIndices)), allIndices)
	}
	if opts.GenerateTangents && !mesh.hasTangents {
		vertices = math.GeometryGenerateTangents(vertexCount, vertices, uint32(len(allIndices)), allIndices)
	}

	if mesh.deduplicate {
		// Deduplication rewrites the shared index list in place, so the
		// per-primitive lists have to be re-sliced against the compacted
		// vertex set afterwards.
		offset := 0
		newCount, unique := math.GeometryDeduplicateVertices(vertexCount, vertices, uint32(len(allIndices)), allIndices)
		core.LogDebug("mesh %q deduplicated %d -> %d vertices", mesh.name, vertexCount, newCount)
		vertexCount = newCount
		vertices = unique
		for p := range mesh.primitives {
			n := len(mesh.primitives[p].indices)
			mesh.primitives[p].indices = allIndices[offset : offset+n]
			offset += n
		}
	}

	// Per-mesh material list: only the materials this mesh references,
	// with submesh indices remapped into it.
	var meshMaterials []*metadata.Material
	localIndex := make(map[int]int)

	submeshes := make([]*metadata.ImportedSubmesh, 0, len(mesh.primitives))
	for _, prim := range mesh.primitives {
		material := metadata.DefaultMaterial()
		if prim.materialIndex >= 0 {
			if prim.materialIndex >= len(materials) {
				return nil, fmt.Errorf("%w: mesh %q references material %d of %d", core.ErrMeshBuildFailed, mesh.name, prim.materialIndex, len(materials))
			}
			material = materials[prim.materialIndex]
		}

		local, seen := localIndex[prim.materialIndex]
		if !seen {
			local = len(meshMaterials)
			meshMaterials = append(meshMaterials, material)
			localIndex[prim.materialIndex] = local
		}

		indexBuffer, indexType := metadata.PackIndices(prim.indices, vertexCount)
		submeshes = append(submeshes, &metadata.ImportedSubmesh{
			IndexBuffer:   indexBuffer,
			IndexCount:    uint32(len(prim.indices)),
			IndexType:     indexType,
			MaterialIndex: local,
		})
	}

	positions := make([]math.Vec3, vertexCount)
	for i := uint32(0); i < vertexCount; i++ {
		positions[i] = vertices[i].Position
	}

	return &metadata.ImportedMesh{
		Name:         mesh.name,
		Vertices:     vertices,
		VertexCount:  vertexCount,
		VertexBuffer: layout.Interleave(vertices),
		Layout:       layout,
		Extents:      math.ExtentsFromPositions(positions),
		Submeshes:    submeshes,
		Materials:    meshMaterials,
	}, nil
}
