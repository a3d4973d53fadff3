package metadata

import (
	"github.com/google/uuid"
)

/** @brief The default texture name. */
const DEFAULT_TEXTURE_NAME string = "default"

/**
 * @brief Represents a texture decoded into tightly packed RGBA pixels,
 * identified by a unique handle. The same file always resolves to the
 * same handle within one asset manager.
 */
type Texture struct {
	/** @brief The unique texture identifier. */
	ID uuid.UUID
	/** @brief The texture Name. */
	Name string
	/** @brief The full path the texture was resolved from. Empty for embedded images. */
	FullPath string
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. */
	Height uint32
	/** @brief The number of channels in the packed pixel data. */
	ChannelCount uint8
	/** @brief The raw texture data, always 4 bytes per pixel. */
	Pixels []byte
}

/** @brief A collection of texture uses */
type TextureUse int

const (
	/** @brief An unknown use. This is default, but should never actually be used. */
	TextureUseUnknown TextureUse = 0x00
	/** @brief The texture is used as a base colour map. */
	TextureUseMapBaseColour TextureUse = 0x01
	/** @brief The texture is used as a combined metallic/roughness map. */
	TextureUseMapMetallicRoughness TextureUse = 0x02
	/** @brief The texture is used as a normal map. */
	TextureUseMapNormal TextureUse = 0x03
	/** @brief The texture is used as an ambient occlusion map. */
	TextureUseMapOcclusion TextureUse = 0x04
	/** @brief The texture is used as an emissive map. */
	TextureUseMapEmissive TextureUse = 0x05
)

/** @brief Represents supported texture filtering modes. */
type TextureFilter int

const (
	/** @brief Nearest-neighbor filtering. */
	TextureFilterModeNearest TextureFilter = 0x0
	/** @brief Linear (i.e. bilinear) filtering.*/
	TextureFilterModeLinear TextureFilter = 0x1
)

/** @brief Represents supported texture repeat modes. */
type TextureRepeat int

const (
	TextureRepeatRepeat         TextureRepeat = 0x1
	TextureRepeatMimorredRepeat TextureRepeat = 0x2
	TextureRepeatClampToEdge    TextureRepeat = 0x3
	TextureRepeatClampToBorder  TextureRepeat = 0x4
)

/**
 * @brief A texture paired with how it is meant to be sampled.
 */
type TextureMap struct {
	/** @brief A pointer to a texture. */
	Texture *Texture
	/** @brief The use of the texture */
	Use TextureUse
	/** @brief Texture filtering mode for minification. */
	FilterMinify TextureFilter
	/** @brief Texture filtering mode for magnification. */
	FilterMagnify TextureFilter
	/** @brief The repeat mode on the U axis (or X, or S) */
	RepeatU TextureRepeat
	/** @brief The repeat mode on the V axis (or Y, or T) */
	RepeatV TextureRepeat
	/** @brief The repeat mode on the W axis (or Z, or U) */
	RepeatW TextureRepeat
}

func NewTextureMap(texture *Texture, use TextureUse) *TextureMap {
	return &TextureMap{
		Texture:       texture,
		Use:           use,
		FilterMinify:  TextureFilterModeLinear,
		FilterMagnify: TextureFilterModeLinear,
		RepeatU:       TextureRepeatRepeat,
		RepeatV:       TextureRepeatRepeat,
		RepeatW:       TextureRepeatRepeat,
	}
}
