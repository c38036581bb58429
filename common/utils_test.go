package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]float32(nil)))

	floats := []float32{1, 2}
	raw := SliceToBytes(floats)
	assert.Len(t, raw, 8)
	// 1.0 as little-endian IEEE 754.
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, raw[:4])

	indices := []uint32{7}
	assert.Equal(t, []byte{7, 0, 0, 0}, SliceToBytes(indices))
}

func TestStructToBytes(t *testing.T) {
	v := struct {
		A uint32
		B uint32
	}{A: 1, B: 2}
	raw := StructToBytes(&v)
	assert.Equal(t, []byte{1, 0, 0, 0, 2, 0, 0, 0}, raw)

	// The view shares memory with the struct.
	v.A = 9
	assert.Equal(t, byte(9), raw[0])
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 5, Coalesce(0, 0, 5, 7))
	assert.Equal(t, "a", Coalesce("", "a"))
	assert.Zero(t, Coalesce(0, 0))
}

func TestFrameSize(t *testing.T) {
	assert.True(t, FrameSize{}.IsZero())
	assert.True(t, FrameSize{Width: 10}.IsZero())
	assert.False(t, FrameSize{Width: 10, Height: 10}.IsZero())
	assert.Equal(t, "800x600", FrameSize{Width: 800, Height: 600}.String())
}

func TestPixelFormat(t *testing.T) {
	assert.True(t, PixelFormatDepth32Float.IsDepth())
	assert.True(t, PixelFormatDepth24Plus.IsDepth())
	assert.False(t, PixelFormatBGRA8Unorm.IsDepth())
	assert.Equal(t, "BGRA8Unorm", PixelFormatBGRA8Unorm.String())
	assert.Equal(t, "Unknown", PixelFormatUnknown.String())
}

func TestImageDataValid(t *testing.T) {
	img := ImageData{Width: 2, Height: 2, ChannelsCount: 4, Pixels: make([]byte, 16)}
	assert.True(t, img.Valid())

	img.Pixels = img.Pixels[:15]
	assert.False(t, img.Valid())
}
