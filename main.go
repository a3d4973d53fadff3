/*
This is an example of application that will use the
importer package to test things out
*/
package main

import (
	"os"

	"github.com/spaghettifunk/modello/engine/assets"
	"github.com/spaghettifunk/modello/engine/core"
	"github.com/spaghettifunk/modello/engine/importer"
)

func main() {
	if len(os.Args) < 2 {
		core.LogFatal("usage: modello <model-file> [<model-file> ...]")
	}

	cfg, err := core.LoadConfig("modello.toml")
	if err != nil {
		core.LogFatal("invalid configuration: %v", err)
	}

	assetManager, err := assets.NewAssetManager()
	if err != nil {
		core.LogFatal("failed to create asset manager: %v", err)
	}
	if err := assetManager.Initialize(cfg.AssetsDir, cfg.TextureSearchPaths...); err != nil {
		core.LogWarn("asset directory %q not watched: %v", cfg.AssetsDir, err)
	}
	defer assetManager.Shutdown()

	modelImporter := importer.New(cfg, assetManager)
	opts := modelImporter.DefaultOptions()

	for _, path := range os.Args[1:] {
		meshes, err := modelImporter.ImportFile(path, opts)
		if err != nil {
			core.LogError("%s: %v", path, err)
			continue
		}
		for _, mesh := range meshes {
			core.LogInfo("%s: mesh %q: %d vertices (%d packed bytes), %d submeshes, %d materials, extents %+v",
				path, mesh.Name, mesh.VertexCount, len(mesh.VertexBuffer), len(mesh.Submeshes), len(mesh.Materials), mesh.Extents)
		}
	}
}
