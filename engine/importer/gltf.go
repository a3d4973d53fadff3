package importer

import (
	"encoding/binary"
	"fmt"
	m "math"

	"github.com/qmuntal/gltf"

	"github.com/spaghettifunk/modello/engine/core"
	"github.com/spaghettifunk/modello/engine/math"
	"github.com/spaghettifunk/modello/engine/renderer/metadata"
)

// extractGLTF flattens the document's node hierarchy into a mesh list,
// folding every node's world matrix into its vertex data. Nothing of the
// scene graph survives the import.
func (im *Importer) extractGLTF(doc *gltf.Document, baseDir string) ([]*rawMesh, []*metadata.Material, error) {
	materials := make([]*metadata.Material, len(doc.Materials))
	for i, src := range doc.Materials {
		materials[i] = im.resolveGLTFMaterial(doc, baseDir, src)
	}

	var meshes []*rawMesh

	var walk func(idx uint32, parent math.Mat4) error
	walk = func(idx uint32, parent math.Mat4) error {
		if int(idx) >= len(doc.Nodes) {
			return fmt.Errorf("%w: node index %d out of range", core.ErrMeshBuildFailed, idx)
		}
		node := doc.Nodes[idx]
		world := nodeMatrix(node).Mul(parent)
		if node.Mesh != nil {
			mesh, err := im.extractGLTFMesh(doc, *node.Mesh, node.Name, world)
			if err != nil {
				return err
			}
			meshes = append(meshes, mesh)
		}
		for _, child := range node.Children {
			if err := walk(child, world); err != nil {
				return err
			}
		}
		return nil
	}

	identity := math.NewMat4Identity()
	for _, root := range sceneRoots(doc) {
		if err := walk(root, identity); err != nil {
			return nil, nil, err
		}
	}

	if len(meshes) == 0 {
		// No scene graph, or none of it references meshes. Fall back to the
		// document's raw mesh list.
		for i := range doc.Meshes {
			mesh, err := im.extractGLTFMesh(doc, uint32(i), "", identity)
			if err != nil {
				return nil, nil, err
			}
			meshes = append(meshes, mesh)
		}
	}

	return meshes, materials, nil
}

func sceneRoots(doc *gltf.Document) []uint32 {
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	if len(doc.Scenes) > 0 {
		return doc.Scenes[0].Nodes
	}
	return nil
}

// nodeMatrix returns the node's local transform. A matrix that is neither
// zero nor identity wins over the TRS properties, per the format rules.
func nodeMatrix(node *gltf.Node) math.Mat4 {
	var zero [16]float64
	identity := [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	if node.Matrix != zero && node.Matrix != identity {
		out := math.Mat4{}
		for i, v := range node.Matrix {
			out.Data[i] = float32(v)
		}
		return out
	}

	out := math.NewMat4Identity()
	var zeroScale [3]float64
	if node.Scale != zeroScale && node.Scale != [3]float64{1, 1, 1} {
		out = math.NewMat4Scale(math.NewVec3(float32(node.Scale[0]), float32(node.Scale[1]), float32(node.Scale[2])))
	}
	if node.Rotation != [4]float64{} && node.Rotation != [4]float64{0, 0, 0, 1} {
		q := math.Quaternion{
			X: float32(node.Rotation[0]),
			Y: float32(node.Rotation[1]),
			Z: float32(node.Rotation[2]),
			W: float32(node.Rotation[3]),
		}
		out = out.Mul(math.NewMat4FromQuaternion(q))
	}
	if node.Translation != [3]float64{} {
		t := math.NewVec3(float32(node.Translation[0]), float32(node.Translation[1]), float32(node.Translation[2]))
		out = out.Mul(math.NewMat4Translation(t))
	}
	return out
}

func (im *Importer) extractGLTFMesh(doc *gltf.Document, meshIndex uint32, nodeName string, world math.Mat4) (*rawMesh, error) {
	if int(meshIndex) >= len(doc.Meshes) {
		return nil, fmt.Errorf("%w: mesh index %d out of range", core.ErrMeshBuildFailed, meshIndex)
	}
	src := doc.Meshes[meshIndex]

	name := src.Name
	if name == "" {
		name = nodeName
	}
	if name == "" {
		name = fmt.Sprintf("mesh_%d", meshIndex)
	}

	raw := &rawMesh{
		name:        name,
		hasNormals:  true,
		hasTangents: true,
	}

	for pi, prim := range src.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			return nil, fmt.Errorf("%w: mesh %q primitive %d has non-triangle mode %d", core.ErrMeshBuildFailed, name, pi, prim.Mode)
		}

		posIdx, ok := prim.Attributes["POSITION"]
		if !ok {
			return nil, fmt.Errorf("%w: mesh %q primitive %d has no POSITION attribute", core.ErrMeshBuildFailed, name, pi)
		}
		positions, err := readAccessorVec3(doc, posIdx)
		if err != nil {
			return nil, fmt.Errorf("%w: mesh %q POSITION: %v", core.ErrMeshBuildFailed, name, err)
		}

		var normals []math.Vec3
		if idx, ok := prim.Attributes["NORMAL"]; ok {
			if normals, err = readAccessorVec3(doc, idx); err != nil {
				return nil, fmt.Errorf("%w: mesh %q NORMAL: %v", core.ErrMeshBuildFailed, name, err)
			}
			if len(normals) != len(positions) {
				return nil, fmt.Errorf("%w: mesh %q has %d normals for %d positions", core.ErrMeshBuildFailed, name, len(normals), len(positions))
			}
		} else {
			raw.hasNormals = false
		}

		var texcoords []math.Vec2
		if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
			if texcoords, err = readAccessorVec2(doc, idx); err != nil {
				return nil, fmt.Errorf("%w: mesh %q TEXCOORD_0: %v", core.ErrMeshBuildFailed, name, err)
			}
			if len(texcoords) != len(positions) {
				return nil, fmt.Errorf("%w: mesh %q has %d texcoords for %d positions", core.ErrMeshBuildFailed, name, len(texcoords), len(positions))
			}
		}

		var tangents []math.Vec4
		if idx, ok := prim.Attributes["TANGENT"]; ok {
			if tangents, err = readAccessorVec4(doc, idx); err != nil {
				return nil, fmt.Errorf("%w: mesh %q TANGENT: %v", core.ErrMeshBuildFailed, name, err)
			}
			if len(tangents) != len(positions) {
				return nil, fmt.Errorf("%w: mesh %q has %d tangents for %d positions", core.ErrMeshBuildFailed, name, len(tangents), len(positions))
			}
		} else {
			raw.hasTangents = false
		}

		base := uint32(len(raw.vertices))
		for i := range positions {
			vert := math.Vertex3D{Position: positions[i]}
			if normals != nil {
				vert.Normal = normals[i]
			}
			if texcoords != nil {
				vert.Texcoord = texcoords[i]
			}
			if tangents != nil {
				// The w component only carries handedness; the tangent itself is xyz.
				vert.Tangent = tangents[i].ToVec3()
			}
			raw.vertices = append(raw.vertices, vert)
		}

		var indices []uint32
		if prim.Indices != nil {
			if indices, err = readAccessorIndices(doc, *prim.Indices); err != nil {
				return nil, fmt.Errorf("%w: mesh %q indices: %v", core.ErrMeshBuildFailed, name, err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}
		for i := range indices {
			indices[i] += base
		}

		materialIndex := -1
		if prim.Material != nil {
			materialIndex = int(*prim.Material)
		}

		raw.primitives = append(raw.primitives, rawPrimitive{
			indices:       indices,
			materialIndex: materialIndex,
		})
	}

	identity := math.NewMat4Identity()
	if world != identity {
		applyTransform(raw.vertices, world)
	}

	return raw, nil
}

// accessorBytes resolves an accessor down to the raw byte window of its
// buffer view plus the effective element stride.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, defaultStride int) ([]byte, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, fmt.Errorf("accessor has no buffer view")
	}
	if int(*accessor.BufferView) >= len(doc.BufferViews) {
		return nil, 0, fmt.Errorf("buffer view %d out of range", *accessor.BufferView)
	}
	view := doc.BufferViews[*accessor.BufferView]
	if int(view.Buffer) >= len(doc.Buffers) {
		return nil, 0, fmt.Errorf("buffer %d out of range", view.Buffer)
	}
	buffer := doc.Buffers[view.Buffer]

	start := int(view.ByteOffset)
	end := start + int(view.ByteLength)
	if end > len(buffer.Data) {
		return nil, 0, fmt.Errorf("buffer view [%d:%d] overruns buffer of %d bytes", start, end, len(buffer.Data))
	}

	stride := int(view.ByteStride)
	if stride == 0 {
		stride = defaultStride
	}
	return buffer.Data[start:end], stride, nil
}

func readAccessorVec3(doc *gltf.Document, idx uint32) ([]math.Vec3, error) {
	if int(idx) >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	accessor := doc.Accessors[idx]
	if accessor.ComponentType != gltf.ComponentFloat || accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("accessor %d is not a float vec3", idx)
	}
	data, stride, err := accessorBytes(doc, accessor, 12)
	if err != nil {
		return nil, err
	}

	count := int(accessor.Count)
	out := make([]math.Vec3, count)
	for i := 0; i < count; i++ {
		offset := i*stride + int(accessor.ByteOffset)
		if offset+12 > len(data) {
			return nil, fmt.Errorf("accessor %d element %d overruns its buffer view", idx, i)
		}
		out[i] = math.NewVec3(
			readFloat32(data[offset+0:]),
			readFloat32(data[offset+4:]),
			readFloat32(data[offset+8:]),
		)
	}
	return out, nil
}

func readAccessorVec2(doc *gltf.Document, idx uint32) ([]math.Vec2, error) {
	if int(idx) >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	accessor := doc.Accessors[idx]
	if accessor.ComponentType != gltf.ComponentFloat || accessor.Type != gltf.AccessorVec2 {
		return nil, fmt.Errorf("accessor %d is not a float vec2", idx)
	}
	data, stride, err := accessorBytes(doc, accessor, 8)
	if err != nil {
		return nil, err
	}

	count := int(accessor.Count)
	out := make([]math.Vec2, count)
	for i := 0; i < count; i++ {
		offset := i*stride + int(accessor.ByteOffset)
		if offset+8 > len(data) {
			return nil, fmt.Errorf("accessor %d element %d overruns its buffer view", idx, i)
		}
		out[i] = math.NewVec2(
			readFloat32(data[offset+0:]),
			readFloat32(data[offset+4:]),
		)
	}
	return out, nil
}

func readAccessorVec4(doc *gltf.Document, idx uint32) ([]math.Vec4, error) {
	if int(idx) >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	accessor := doc.Accessors[idx]
	if accessor.ComponentType != gltf.ComponentFloat || accessor.Type != gltf.AccessorVec4 {
		return nil, fmt.Errorf("accessor %d is not a float vec4", idx)
	}
	data, stride, err := accessorBytes(doc, accessor, 16)
	if err != nil {
		return nil, err
	}

	count := int(accessor.Count)
	out := make([]math.Vec4, count)
	for i := 0; i < count; i++ {
		offset := i*stride + int(accessor.ByteOffset)
		if offset+16 > len(data) {
			return nil, fmt.Errorf("accessor %d element %d overruns its buffer view", idx, i)
		}
		out[i] = math.NewVec4(
			readFloat32(data[offset+0:]),
			readFloat32(data[offset+4:]),
			readFloat32(data[offset+8:]),
			readFloat32(data[offset+12:]),
		)
	}
	return out, nil
}

func readAccessorIndices(doc *gltf.Document, idx uint32) ([]uint32, error) {
	if int(idx) >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	accessor := doc.Accessors[idx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("index accessor %d is not scalar", idx)
	}

	var elementSize int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		elementSize = 1
	case gltf.ComponentUshort:
		elementSize = 2
	case gltf.ComponentUint:
		elementSize = 4
	default:
		return nil, fmt.Errorf("index accessor %d has unsupported component type %d", idx, accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, elementSize)
	if err != nil {
		return nil, err
	}

	count := int(accessor.Count)
	out := make([]uint32, count)
	for i := 0; i < count; i++ {
		offset := i*stride + int(accessor.ByteOffset)
		if offset+elementSize > len(data) {
			return nil, fmt.Errorf("index accessor %d element %d overruns its buffer view", idx, i)
		}
		switch accessor.ComponentType {
		case gltf.ComponentUbyte:
			out[i] = uint32(data[offset])
		case gltf.ComponentUshort:
			out[i] = uint32(binary.LittleEndian.Uint16(data[offset:]))
		case gltf.ComponentUint:
			out[i] = binary.LittleEndian.Uint32(data[offset:])
		}
	}
	return out, nil
}

func readFloat32(b []byte) float32 {
	return m.Float32frombits(binary.LittleEndian.Uint32(b))
}
