package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modello.toml")
	content := `
assets_dir = "content"
texture_search_paths = ["textures", "shared/textures"]
correct_axis = true
center = true
generate_normals = false
scale = 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "content", cfg.AssetsDir)
	assert.Equal(t, []string{"textures", "shared/textures"}, cfg.TextureSearchPaths)
	assert.True(t, cfg.CorrectAxis)
	assert.True(t, cfg.Center)
	assert.False(t, cfg.GenerateNormals)
	// Unset keys keep their defaults.
	assert.True(t, cfg.GenerateTangents)
	assert.Equal(t, float32(0.5), cfg.Scale)
}

func TestLoadConfigZeroScaleFallsBackToOne(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modello.toml")
	require.NoError(t, os.WriteFile(path, []byte("scale = 0.0\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, float32(1.0), cfg.Scale)
}

func TestLoadConfigBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modello.toml")
	require.NoError(t, os.WriteFile(path, []byte("scale = ["), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
