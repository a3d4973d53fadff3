package loaders

import (
	"bytes"
	"image"
	"image/draw"
	"os"

	// Register the image codecs texture files may arrive in.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/google/uuid"

	"github.com/spaghettifunk/modello/engine/renderer/metadata"
)

type TextureLoader struct{}

func (tl *TextureLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	// Open and decode the texture image file
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(file) // Decodes the image (e.g., PNG, JPEG)
	if err != nil {
		return nil, err
	}

	texture := tl.FromImage(info.Name(), img)
	texture.FullPath = path

	return &metadata.Resource{
		Name:     texture.Name,
		FullPath: path,
		DataSize: uint64(info.Size()),
		Data:     texture,
	}, nil
}

// LoadFromMemory decodes an image held in a byte slice, as found in
// binary asset containers with embedded textures.
func (tl *TextureLoader) LoadFromMemory(name string, data []byte) (*metadata.Texture, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return tl.FromImage(name, img), nil
}

// FromImage converts an already decoded image into a texture with
// tightly packed RGBA pixels.
func (tl *TextureLoader) FromImage(name string, img image.Image) *metadata.Texture {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	return &metadata.Texture{
		ID:           uuid.New(),
		Name:         name,
		Width:        uint32(bounds.Dx()),
		Height:       uint32(bounds.Dy()),
		ChannelCount: 4,
		Pixels:       rgba.Pix,
	}
}

func (tl *TextureLoader) Unload(*metadata.Resource) error {
	return nil
}
