package assets

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/modello/engine/assets/loaders"
	"github.com/spaghettifunk/modello/engine/core"
	"github.com/spaghettifunk/modello/engine/renderer/metadata"
)

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

type AssetManager struct {
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	// Texture cache. The same file always resolves to the same handle.
	textures    map[string]*metadata.Texture
	searchPaths []string

	mutex sync.RWMutex

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	events   chan fsnotify.Event
	errors   chan error
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		textures: make(map[string]*metadata.Texture),
		fsnotify: fsWatch,
		events:   make(chan fsnotify.Event),
		errors:   make(chan error),
		done:     make(chan struct{}),
	}, nil
}

// Initialize starts watching assetsDir and registers the loaders. The
// provided search paths are consulted, in order, when resolving texture
// references by name.
func (am *AssetManager) Initialize(assetsDir string, searchPaths ...string) error {
	go am.start()

	am.searchPaths = append([]string{assetsDir}, searchPaths...)

	// Register loaders
	am.registerLoader(metadata.ResourceTypeImage, &loaders.TextureLoader{})

	// Watching is best effort; resolution by search path still works when
	// the directory cannot be watched.
	return am.addRecursive(assetsDir)
}

func (am *AssetManager) Shutdown() {
	if am.isClosed {
		return
	}
	am.isClosed = true
	close(am.done)
}

// Add starts watching the named file or directory (non-recursively).
func (am *AssetManager) add(name string) error {
	if am.isClosed {
		return errors.New("asset manager already closed")
	}
	return am.fsnotify.Add(name)
}

// AddRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return errors.New("asset manager already closed")
	}
	if err := am.watchRecursive(name, false); err != nil {
		return err
	}
	return nil
}

// Remove stops watching the the named file or directory (non-recursively).
func (am *AssetManager) remove(name string) error {
	return am.fsnotify.Remove(name)
}

// RemoveRecursive stops watching the named directory and all sub-directories.
func (am *AssetManager) removeRecursive(name string) error {
	if err := am.watchRecursive(name, true); err != nil {
		return err
	}
	return nil
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// AcquireTexture resolves a texture reference by path or name and loads it
// from disk, consulting the search paths in order. Loading the same file
// twice returns the cached handle.
func (am *AssetManager) AcquireTexture(name string) (*metadata.Texture, error) {
	path, err := am.resolvePath(name)
	if err != nil {
		return nil, err
	}

	am.mutex.RLock()
	texture, exists := am.textures[path]
	am.mutex.RUnlock()
	if exists {
		return texture, nil
	}

	loader, loaderExists := am.loaders[metadata.ResourceTypeImage]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %d", metadata.ResourceTypeImage)
	}

	resource, err := loader.Load(path, metadata.ResourceTypeImage, nil)
	if err != nil {
		return nil, err
	}
	texture = resource.Data.(*metadata.Texture)

	am.mutex.Lock()
	am.textures[path] = texture
	am.assets[path] = AssetInfo{Path: path, Type: metadata.ResourceTypeImage, LastLoaded: time.Now()}
	am.mutex.Unlock()

	return texture, nil
}

// AcquireTextureFromMemory decodes an embedded image held in a byte slice.
// These are not cached; embedded data has no stable path to key on.
func (am *AssetManager) AcquireTextureFromMemory(name string, data []byte) (*metadata.Texture, error) {
	tl := &loaders.TextureLoader{}
	return tl.LoadFromMemory(name, data)
}

// AcquireTextureFromImage wraps an already decoded image into a texture.
func (am *AssetManager) AcquireTextureFromImage(name string, img image.Image) (*metadata.Texture, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	tl := &loaders.TextureLoader{}
	return tl.FromImage(name, img), nil
}

func (am *AssetManager) resolvePath(name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", err
		}
		return name, nil
	}
	for _, dir := range am.searchPaths {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	// Last resort: relative to the working directory.
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}
	return "", fmt.Errorf("asset not found: %s", name)
}

func (am *AssetManager) start() {
	for {
		select {

		case e := <-am.fsnotify.Events:
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					am.watchRecursive(e.Name, false)
				}
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name)
			}
			//Can't stat a deleted directory, so just pretend that it's always a directory and
			//try to remove from the watch list...  we really have no clue if it's a directory or not...
			if e.Op&fsnotify.Remove != 0 {
				am.removeAsset(e.Name)
				am.fsnotify.Remove(e.Name)
			}
			select {
			case am.events <- e:
			default:
			}

		case e := <-am.fsnotify.Errors:
			select {
			case am.errors <- e:
			default:
			}
			core.LogError(e.Error())

		case <-am.done:
			am.fsnotify.Close()
			close(am.events)
			close(am.errors)
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list.
// this is probably a very racey process. What if a file is added to a folder before we get the watch added?
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	wd = wd + "/" // add trailing slash
	err = filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				if err = am.fsnotify.Remove(walkPath); err != nil {
					return err
				}
			} else {
				if err = am.fsnotify.Add(walkPath); err != nil {
					return err
				}
			}
		} else {
			p := strings.TrimPrefix(walkPath, wd)
			am.handleFileEvent(p)
		}
		return nil
	})
	return err
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return
	}
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
	// A rewritten image invalidates the cached handle.
	delete(am.textures, path)
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
	delete(am.textures, path)
}

func determineAssetType(path string) metadata.ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".tiff":
		return metadata.ResourceTypeImage
	case ".gltf", ".glb", ".obj":
		return metadata.ResourceTypeModel
	case ".mtl":
		return metadata.ResourceTypeMaterial
	default:
		return metadata.ResourceTypeNone
	}
}
