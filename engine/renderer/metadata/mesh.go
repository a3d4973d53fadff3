package metadata

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/modello/engine/math"
)

/**
 * @brief A single draw range of an imported mesh: a packed index buffer
 * plus the material it should be drawn with. Ownership of the buffer
 * transfers wholesale to the caller.
 */
type ImportedSubmesh struct {
	/** @brief The packed index data, ready for upload. */
	IndexBuffer []byte
	/** @brief The number of indices in the buffer. */
	IndexCount uint32
	/** @brief The element width of the index data. */
	IndexType vk.IndexType
	/** @brief Index into the owning mesh's Materials slice. */
	MaterialIndex int
}

/**
 * @brief The GPU-ready result of importing one mesh: an interleaved vertex
 * buffer laid out per the requested vertex layout, the submesh index
 * buffers, and the materials they reference. Immutable after construction.
 */
type ImportedMesh struct {
	/** @brief The mesh name, taken from the source asset. */
	Name string
	/** @brief The transformed vertex data the buffer was packed from. */
	Vertices []math.Vertex3D
	/** @brief The number of vertices. */
	VertexCount uint32
	/** @brief The interleaved vertex data, ready for upload. */
	VertexBuffer []byte
	/** @brief The layout the vertex buffer was packed with. */
	Layout *VertexLayout
	/** @brief The extents of the mesh after all corrections. */
	Extents math.Extents3D
	/** @brief The draw ranges of this mesh. */
	Submeshes []*ImportedSubmesh
	/** @brief The materials referenced by the submeshes. */
	Materials []*Material
}
