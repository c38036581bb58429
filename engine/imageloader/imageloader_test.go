package imageloader

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basalt3d/basalt/engine/graphics/resource"
)

// mapProvider serves resources from memory.
type mapProvider map[string][]byte

func (p mapProvider) ProvideData(path string) ([]byte, error) {
	data, ok := p[path]
	if !ok {
		return nil, fmt.Errorf("no such resource %q", path)
	}
	return data, nil
}

func encodePNG(t *testing.T, width, height int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	data := encodePNG(t, 4, 2, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	img, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), img.Width)
	assert.Equal(t, uint32(2), img.Height)
	assert.Equal(t, uint32(4), img.ChannelsCount)
	assert.True(t, img.Valid())
	assert.Equal(t, []byte{10, 20, 30, 255}, img.Pixels[:4])
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not an image"))
	assert.Error(t, err)
}

func TestLoadImage(t *testing.T) {
	provider := mapProvider{
		"red.png": encodePNG(t, 2, 2, color.RGBA{R: 255, A: 255}),
	}
	loader := NewLoader(provider)

	img, err := loader.LoadImage("red.png")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), img.Width)
	assert.Equal(t, []byte{255, 0, 0, 255}, img.Pixels[:4])

	_, err = loader.LoadImage("missing.png")
	assert.Error(t, err)
}

func TestLoadImagesPreservesOrder(t *testing.T) {
	provider := mapProvider{
		"a.png": encodePNG(t, 1, 1, color.RGBA{R: 1, A: 255}),
		"b.png": encodePNG(t, 2, 2, color.RGBA{G: 1, A: 255}),
		"c.png": encodePNG(t, 3, 3, color.RGBA{B: 1, A: 255}),
	}
	loader := NewLoader(provider)

	images, err := loader.LoadImages([]string{"a.png", "b.png", "c.png"})
	require.NoError(t, err)
	require.Len(t, images, 3)
	assert.Equal(t, uint32(1), images[0].Width)
	assert.Equal(t, uint32(2), images[1].Width)
	assert.Equal(t, uint32(3), images[2].Width)
}

func TestLoadImagesFirstFailure(t *testing.T) {
	provider := mapProvider{
		"a.png": encodePNG(t, 1, 1, color.RGBA{A: 255}),
	}
	loader := NewLoader(provider)

	_, err := loader.LoadImages([]string{"a.png", "missing.png"})
	assert.Error(t, err)
}

func TestLoadCubeFaces(t *testing.T) {
	provider := mapProvider{}
	paths := make([]string, resource.CubeFaceCount)
	for i := range paths {
		paths[i] = fmt.Sprintf("face%d.png", i)
		provider[paths[i]] = encodePNG(t, 8, 8, color.RGBA{R: uint8(i * 10), A: 255})
	}
	loader := NewLoader(provider)

	faces, err := loader.LoadCubeFaces(paths)
	require.NoError(t, err)
	require.Len(t, faces, resource.CubeFaceCount)

	// Face order matches path order even though decoding is parallel.
	for i, face := range faces {
		assert.Equal(t, byte(i*10), face.Pixels[0], "face %d out of order", i)
	}
}

func TestLoadCubeFacesValidation(t *testing.T) {
	loader := NewLoader(mapProvider{})

	_, err := loader.LoadCubeFaces([]string{"one.png"})
	assert.Error(t, err)
}

// One failed face fails the whole cube load after the join.
func TestLoadCubeFacesFirstFailure(t *testing.T) {
	provider := mapProvider{}
	paths := make([]string, resource.CubeFaceCount)
	for i := range paths {
		paths[i] = fmt.Sprintf("face%d.png", i)
		if i != 3 {
			provider[paths[i]] = encodePNG(t, 8, 8, color.RGBA{A: 255})
		}
	}
	loader := NewLoader(provider)

	_, err := loader.LoadCubeFaces(paths)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "face3.png")
}
