package core

import (
	"errors"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

/**
 * @brief Import defaults loaded from a TOML file. Every field has a
 * usable zero-adjacent default so a missing file is not an error.
 */
type Config struct {
	/** @brief Directory watched and indexed by the asset manager. */
	AssetsDir string `toml:"assets_dir"`
	/** @brief Additional directories searched for texture files. */
	TextureSearchPaths []string `toml:"texture_search_paths"`
	/** @brief Rotate Z-up assets into the renderer's Y-up convention. */
	CorrectAxis bool `toml:"correct_axis"`
	/** @brief Translate assets so the union bounding box is centered at the origin. */
	Center bool `toml:"center"`
	/** @brief Generate face normals when the source has none. */
	GenerateNormals bool `toml:"generate_normals"`
	/** @brief Generate tangents when the source has none. */
	GenerateTangents bool `toml:"generate_tangents"`
	/** @brief Uniform scale applied to every imported asset. */
	Scale float32 `toml:"scale"`
}

func DefaultConfig() *Config {
	return &Config{
		AssetsDir:        "assets",
		CorrectAxis:      false,
		Center:           false,
		GenerateNormals:  true,
		GenerateTangents: true,
		Scale:            1.0,
	}
}

// LoadConfig reads the TOML file at path on top of the defaults.
// A missing file returns the defaults untouched.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			LogDebug("config file %s not found, using defaults", path)
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Scale == 0 {
		cfg.Scale = 1.0
	}
	return cfg, nil
}
