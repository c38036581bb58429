package resource

import (
	"fmt"

	"github.com/basalt3d/basalt/common"
)

// CubeFaceCount is the number of faces of a cube texture.
const CubeFaceCount = 6

// TextureKind identifies the dimensionality of a texture.
type TextureKind int

const (
	// TextureKind2D is a plain two-dimensional texture.
	TextureKind2D TextureKind = iota

	// TextureKindCube is a six-face cube texture.
	TextureKindCube
)

// TextureSettings describes a texture's immutable creation parameters.
type TextureSettings struct {
	// Kind is the texture dimensionality.
	Kind TextureKind
	// Width and Height are the texel dimensions of one face/mip 0.
	Width, Height uint32
	// Format is the pixel format.
	Format common.PixelFormat
	// MipCount is the number of mip levels; zero means 1.
	MipCount uint32
	// ArrayLayers is the number of array layers; 6 for cube textures, else 1.
	ArrayLayers uint32
}

// SubresourceData is one unit of texture upload data: a single mip level of a
// single array layer (cube face).
type SubresourceData struct {
	// Pixels is the raw pixel bytes for this subresource.
	Pixels []byte
	// Layer is the array layer (cube face index for cube textures).
	Layer uint32
	// Mip is the mip level.
	Mip uint32
	// BytesPerRow is the row pitch; zero means tightly packed.
	BytesPerRow uint32
}

// texture is the implementation of the Texture interface.
type texture struct {
	shared

	settings TextureSettings

	// staged holds subresource data collected at construction (cube faces)
	// that the graphics context uploads during texture initialization.
	staged []SubresourceData
}

// Texture is a GPU-resident image resource.
type Texture interface {
	Resource

	// Settings returns the texture's immutable creation parameters.
	Settings() TextureSettings

	// StagedSubresources returns subresource data collected at construction
	// and pending upload. Consumed by the graphics context during texture
	// initialization.
	StagedSubresources() []SubresourceData

	// SetData uploads the given subresources to GPU memory. The upload
	// completes before any command list sampling this texture executes.
	//
	// Parameters:
	//   - subresources: the subresource data to upload
	//
	// Returns:
	//   - error: an error if a subresource is out of range or upload fails
	SetData(subresources []SubresourceData) error
}

var _ Texture = &texture{}

// NewTexture creates a 2D texture resource from decoded image data.
// The texture owns no GPU memory until a graphics context initializes it.
//
// Parameters:
//   - label: debug label for the texture
//   - img: decoded RGBA image data; ChannelsCount must be 4
//
// Returns:
//   - Texture: the new texture with the image staged for upload
//   - error: an error if the image data violates the texture contract
func NewTexture(label string, img common.ImageData) (Texture, error) {
	if err := validateFace(label, 0, img, img.Width, img.Height); err != nil {
		return nil, err
	}
	return &texture{
		shared: newShared(label),
		settings: TextureSettings{
			Kind:        TextureKind2D,
			Width:       img.Width,
			Height:      img.Height,
			Format:      common.PixelFormatRGBA8Unorm,
			MipCount:    1,
			ArrayLayers: 1,
		},
		staged: []SubresourceData{{Pixels: img.Pixels}},
	}, nil
}

// NewCubeTexture creates a cube texture from six decoded face images.
// All faces must share identical dimensions and a channel count of 4; this is
// a precondition of the whole creation, so any violation aborts with an error
// and no partial texture is produced.
//
// Parameters:
//   - label: debug label for the texture
//   - faces: exactly six decoded RGBA face images, +X -X +Y -Y +Z -Z order
//
// Returns:
//   - Texture: the new cube texture with all faces staged for upload
//   - error: an error if the faces violate the cube texture contract
func NewCubeTexture(label string, faces []common.ImageData) (Texture, error) {
	if len(faces) != CubeFaceCount {
		return nil, fmt.Errorf("texture %q: cube requires %d faces, got %d", label, CubeFaceCount, len(faces))
	}

	width, height := faces[0].Width, faces[0].Height
	staged := make([]SubresourceData, 0, CubeFaceCount)
	for i, face := range faces {
		if err := validateFace(label, i, face, width, height); err != nil {
			return nil, err
		}
		staged = append(staged, SubresourceData{Pixels: face.Pixels, Layer: uint32(i)})
	}

	return &texture{
		shared: newShared(label),
		settings: TextureSettings{
			Kind:        TextureKindCube,
			Width:       width,
			Height:      height,
			Format:      common.PixelFormatRGBA8Unorm,
			MipCount:    1,
			ArrayLayers: CubeFaceCount,
		},
		staged: staged,
	}, nil
}

// validateFace checks one face image against the required dimensions and the
// fixed RGBA channel layout.
func validateFace(label string, index int, img common.ImageData, width, height uint32) error {
	if img.ChannelsCount != 4 {
		return fmt.Errorf("texture %q: face %d has %d channels, requires 4 (RGBA)", label, index, img.ChannelsCount)
	}
	if img.Width != width || img.Height != height {
		return fmt.Errorf("texture %q: face %d is %dx%d, requires %dx%d", label, index, img.Width, img.Height, width, height)
	}
	if !img.Valid() {
		return fmt.Errorf("texture %q: face %d pixel data is %d bytes, requires %d", label, index, len(img.Pixels), img.Width*img.Height*img.ChannelsCount)
	}
	return nil
}

func (t *texture) Settings() TextureSettings {
	return t.settings
}

func (t *texture) StagedSubresources() []SubresourceData {
	return t.staged
}

func (t *texture) SetData(subresources []SubresourceData) error {
	if t.uploader == nil {
		return ErrNotInitialized
	}
	for _, sub := range subresources {
		if sub.Layer >= t.settings.ArrayLayers {
			return fmt.Errorf("texture %q: layer %d out of range (layers=%d)", t.label, sub.Layer, t.settings.ArrayLayers)
		}
	}
	return t.uploader.WriteTexture(t, subresources)
}
