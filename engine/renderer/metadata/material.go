package metadata

import "github.com/spaghettifunk/modello/engine/math"

/** @brief The name of the default material. */
const DefaultMaterialName string = "default"

/**
 * @brief A material, which represents the surface properties carried by a
 * source asset: up to five optional texture maps plus the scalar factors a
 * renderer falls back to when a map did not resolve.
 */
type Material struct {
	/** @brief The material name. */
	Name string
	/** @brief The base colour factor, used when no base colour map resolves. */
	BaseColourFactor math.Vec4
	/** @brief The metallic factor, used when no metallic/roughness map resolves. */
	MetallicFactor float32
	/** @brief The roughness factor, used when no metallic/roughness map resolves. */
	RoughnessFactor float32
	/** @brief The occlusion strength, used when no occlusion map resolves. */
	OcclusionStrength float32
	/** @brief The base colour texture map. */
	BaseColourMap *TextureMap
	/** @brief The combined metallic/roughness texture map. */
	MetallicRoughnessMap *TextureMap
	/** @brief The normal texture map. */
	NormalMap *TextureMap
	/** @brief The ambient occlusion texture map. */
	OcclusionMap *TextureMap
	/** @brief The emissive texture map. */
	EmissiveMap *TextureMap
}

/**
 * @brief Returns a material holding the conventional fallback factors:
 * white base colour, non-metallic, fully rough, full occlusion.
 */
func DefaultMaterial() *Material {
	return &Material{
		Name:              DefaultMaterialName,
		BaseColourFactor:  math.NewVec4One(),
		MetallicFactor:    0.0,
		RoughnessFactor:   1.0,
		OcclusionStrength: 1.0,
	}
}
