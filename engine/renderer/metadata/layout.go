package metadata

import (
	"encoding/binary"
	"fmt"
	m "math"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/modello/engine/math"
)

/** @brief The attribute semantics a vertex layout can request. */
type VertexAttributeSemantic string

const (
	AttributePosition VertexAttributeSemantic = "POSITION"
	AttributeNormal   VertexAttributeSemantic = "NORMAL"
	AttributeTexcoord VertexAttributeSemantic = "TEXCOORD_0"
	AttributeTangent  VertexAttributeSemantic = "TANGENT"
)

/**
 * @brief A single attribute of a vertex layout.
 */
type VertexAttribute struct {
	/** @brief Which source data this attribute is packed from. */
	Semantic VertexAttributeSemantic
	/** @brief The data format of the attribute. */
	Format vk.Format
	/** @brief The byte offset of the attribute within one vertex. */
	Offset uint32
}

/**
 * @brief Describes how vertex data is interleaved in the packed buffer and
 * how a pipeline should read it back.
 */
type VertexLayout struct {
	/** @brief An array of attributes, in packing order. */
	Attributes []VertexAttribute
	/** @brief The stride of the vertex data (ex: sizeof(vertex_3d)) */
	Stride uint32
}

/**
 * @brief The stock layout: position, normal, texcoord and tangent,
 * all 32-bit floats, tightly interleaved.
 */
func DefaultVertexLayout() *VertexLayout {
	return &VertexLayout{
		Attributes: []VertexAttribute{
			{Semantic: AttributePosition, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
			{Semantic: AttributeNormal, Format: vk.FormatR32g32b32Sfloat, Offset: 12},
			{Semantic: AttributeTexcoord, Format: vk.FormatR32g32Sfloat, Offset: 24},
			{Semantic: AttributeTangent, Format: vk.FormatR32g32b32Sfloat, Offset: 32},
		},
		Stride: 44,
	}
}

// FormatSize returns the byte width of the vertex formats a layout may use.
func FormatSize(format vk.Format) uint32 {
	switch format {
	case vk.FormatR32Sfloat:
		return 4
	case vk.FormatR32g32Sfloat:
		return 8
	case vk.FormatR32g32b32Sfloat:
		return 12
	case vk.FormatR32g32b32a32Sfloat:
		return 16
	default:
		return 0
	}
}

// Validate checks that attribute offsets fit within the stride.
func (vl *VertexLayout) Validate() error {
	for _, attr := range vl.Attributes {
		size := FormatSize(attr.Format)
		if size == 0 {
			return fmt.Errorf("unsupported vertex attribute format %d", attr.Format)
		}
		if attr.Offset+size > vl.Stride {
			return fmt.Errorf("attribute %s overruns vertex stride %d", attr.Semantic, vl.Stride)
		}
	}
	return nil
}

/**
 * @brief Returns the binding description a pipeline needs to consume
 * buffers packed with this layout.
 */
func (vl *VertexLayout) BindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0, // Binding index
		Stride:    vl.Stride,
		InputRate: vk.VertexInputRateVertex, // Move to next data entry for each vertex.
	}
}

/**
 * @brief Returns the attribute descriptions a pipeline needs to consume
 * buffers packed with this layout. Locations follow attribute order.
 */
func (vl *VertexLayout) AttributeDescriptions() []vk.VertexInputAttributeDescription {
	out := make([]vk.VertexInputAttributeDescription, len(vl.Attributes))
	for i, attr := range vl.Attributes {
		out[i] = vk.VertexInputAttributeDescription{
			Location: uint32(i),
			Binding:  0,
			Format:   attr.Format,
			Offset:   attr.Offset,
		}
	}
	return out
}

/**
 * @brief Packs the provided vertices into a single interleaved byte buffer
 * following this layout. Attributes the layout does not request are skipped.
 */
func (vl *VertexLayout) Interleave(vertices []math.Vertex3D) []byte {
	out := make([]byte, uint32(len(vertices))*vl.Stride)
	for i, vert := range vertices {
		base := uint32(i) * vl.Stride
		for _, attr := range vl.Attributes {
			offset := base + attr.Offset
			switch attr.Semantic {
			case AttributePosition:
				putVec3(out[offset:], vert.Position)
			case AttributeNormal:
				putVec3(out[offset:], vert.Normal)
			case AttributeTexcoord:
				putFloat32(out[offset:], vert.Texcoord.X)
				putFloat32(out[offset+4:], vert.Texcoord.Y)
			case AttributeTangent:
				putVec3(out[offset:], vert.Tangent)
			}
		}
	}
	return out
}

/**
 * @brief Packs an index list into a byte buffer, choosing 16-bit elements
 * whenever every vertex of the mesh is addressable with them.
 *
 * @param indices The index list to pack.
 * @param vertexCount The number of vertices the indices refer into.
 * @return The packed buffer and the chosen element width.
 */
func PackIndices(indices []uint32, vertexCount uint32) ([]byte, vk.IndexType) {
	if vertexCount <= m.MaxUint16 {
		out := make([]byte, len(indices)*2)
		for i, idx := range indices {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(idx))
		}
		return out, vk.IndexTypeUint16
	}
	out := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(out[i*4:], idx)
	}
	return out, vk.IndexTypeUint32
}

func putFloat32(b []byte, f float32) {
	binary.LittleEndian.PutUint32(b, m.Float32bits(f))
}

func putVec3(b []byte, v math.Vec3) {
	putFloat32(b, v.X)
	putFloat32(b[4:], v.Y)
	putFloat32(b[8:], v.Z)
}
