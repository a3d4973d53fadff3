package importer

import (
	"github.com/spaghettifunk/modello/engine/math"
)

/**
 * @brief Composes the optional root correction matrix from its three
 * independent parts, applied in a fixed order: axis-convention rotation
 * first, then uniform scale, then the centering translation.
 *
 * @param correctAxis Rotate -90 degrees about X to bring Z-up assets into Y-up.
 * @param scale The uniform scale factor. Zero is treated as 1.0.
 * @param translation The centering translation, applied last.
 * @return The composed root matrix.
 */
func ComposeRootTransform(correctAxis bool, scale float32, translation math.Vec3) math.Mat4 {
	out := math.NewMat4Identity()
	if correctAxis {
		out = math.NewMat4EulerX(-math.K_HALF_PI)
	}
	if scale == 0 {
		scale = 1.0
	}
	if scale != 1.0 {
		out = out.Mul(math.NewMat4Scale(math.NewVec3(scale, scale, scale)))
	}
	if translation != math.NewVec3Zero() {
		out = out.Mul(math.NewMat4Translation(translation))
	}
	return out
}

// applyTransform runs every vertex through the given matrix. Positions get
// the full transform; normals and tangents only its rotational part, which
// is safe because the composed corrections never carry non-uniform scale.
func applyTransform(vertices []math.Vertex3D, transform math.Mat4) {
	for i := range vertices {
		vertices[i].Position = vertices[i].Position.Transform(transform)
		vertices[i].Normal = vertices[i].Normal.TransformDirection(transform).Normalized()
		vertices[i].Tangent = vertices[i].Tangent.TransformDirection(transform).Normalized()
	}
}
