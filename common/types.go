// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "fmt"

// FrameSize is an integer width/height pair in pixels, used for window client
// areas, presentation surfaces, and render target dimensions.
type FrameSize struct {
	// Width is the horizontal size in pixels.
	Width uint32
	// Height is the vertical size in pixels.
	Height uint32
}

// IsZero reports whether either dimension is zero. A zero-sized frame cannot
// back a presentation surface, so callers use this to detect minimized windows.
func (s FrameSize) IsZero() bool {
	return s.Width == 0 || s.Height == 0
}

// String returns the size formatted as "WxH".
func (s FrameSize) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Color is a normalized RGBA color with each channel in the [0, 1] range,
// used for render target clear values.
type Color struct {
	R, G, B, A float64
}

// PixelFormat identifies the memory layout of a texture or render target pixel.
// Only the formats the engine actually renders with are enumerated; backends
// map these onto their native format enums.
type PixelFormat int

const (
	// PixelFormatUnknown is the zero value, meaning "no format" (e.g., no depth attachment).
	PixelFormatUnknown PixelFormat = iota

	// PixelFormatRGBA8Unorm is 8 bits per channel RGBA, linear color space.
	PixelFormatRGBA8Unorm

	// PixelFormatRGBA8UnormSrgb is 8 bits per channel RGBA with sRGB encoding.
	PixelFormatRGBA8UnormSrgb

	// PixelFormatBGRA8Unorm is the common swapchain color format on desktop platforms.
	PixelFormatBGRA8Unorm

	// PixelFormatDepth24Plus is a depth format with at least 24 bits of depth precision.
	PixelFormatDepth24Plus

	// PixelFormatDepth32Float is a 32-bit floating point depth format.
	PixelFormatDepth32Float
)

// IsDepth reports whether the format is a depth format.
func (f PixelFormat) IsDepth() bool {
	return f == PixelFormatDepth24Plus || f == PixelFormatDepth32Float
}

// String returns the format name for debug labels and error messages.
func (f PixelFormat) String() string {
	switch f {
	case PixelFormatRGBA8Unorm:
		return "RGBA8Unorm"
	case PixelFormatRGBA8UnormSrgb:
		return "RGBA8UnormSrgb"
	case PixelFormatBGRA8Unorm:
		return "BGRA8Unorm"
	case PixelFormatDepth24Plus:
		return "Depth24Plus"
	case PixelFormatDepth32Float:
		return "Depth32Float"
	default:
		return "Unknown"
	}
}

// ImageData holds decoded RGBA pixel data handed to the engine by the image
// loader collaborator. The engine requires a fixed RGBA layout with 4 channels;
// decoders are responsible for converting indexed/grayscale sources.
type ImageData struct {
	// Width is the image width in pixels.
	Width uint32
	// Height is the image height in pixels.
	Height uint32
	// ChannelsCount is the number of color channels per pixel. Textures require 4 (RGBA).
	ChannelsCount uint32
	// Pixels is the raw pixel bytes, ChannelsCount bytes per pixel, row-major with no padding.
	Pixels []byte
}

// Valid reports whether the pixel slice length matches the declared dimensions
// and channel count.
func (d ImageData) Valid() bool {
	return len(d.Pixels) == int(d.Width*d.Height*d.ChannelsCount)
}
