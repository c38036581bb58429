// Package state models the fixed-function pipeline state bound together with
// a program: rasterizer, depth and blend configuration plus the dynamic
// viewport and scissor rectangles.
package state

import (
	"fmt"

	"github.com/basalt3d/basalt/common"
	"github.com/basalt3d/basalt/engine/graphics/program"
)

// Viewport is a render target sub-region with a depth range.
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

// NewViewport returns a full-depth viewport covering a frame of the given size.
func NewViewport(size common.FrameSize) Viewport {
	return Viewport{
		Width:    float32(size.Width),
		Height:   float32(size.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
}

// ScissorRect is an integer render target clip rectangle.
type ScissorRect struct {
	X, Y          uint32
	Width, Height uint32
}

// NewScissorRect returns a scissor rectangle covering a frame of the given size.
func NewScissorRect(size common.FrameSize) ScissorRect {
	return ScissorRect{Width: size.Width, Height: size.Height}
}

// CullMode controls triangle face culling.
type CullMode int

const (
	// CullModeBack culls back faces (default).
	CullModeBack CullMode = iota

	// CullModeFront culls front faces.
	CullModeFront

	// CullModeNone disables culling.
	CullModeNone
)

// CompareFunc is a depth comparison function.
type CompareFunc int

const (
	// CompareFuncLess passes fragments closer than the stored depth (default).
	CompareFuncLess CompareFunc = iota

	// CompareFuncLessEqual passes fragments at or closer than the stored depth.
	CompareFuncLessEqual

	// CompareFuncAlways passes every fragment.
	CompareFuncAlways
)

// RasterizerSettings is the fixed rasterizer configuration.
type RasterizerSettings struct {
	// CullMode selects which triangle faces are discarded.
	CullMode CullMode
	// FrontCounterClockwise makes counter-clockwise winding the front face.
	FrontCounterClockwise bool
}

// DepthSettings is the fixed depth test configuration.
type DepthSettings struct {
	// Enabled turns the depth test on.
	Enabled bool
	// WriteEnabled allows passing fragments to update the depth buffer.
	WriteEnabled bool
	// Compare is the depth comparison function.
	Compare CompareFunc
}

// Settings collects everything needed to create a RenderState.
type Settings struct {
	// Program is the shader program the state bakes in.
	Program program.Program
	// Rasterizer is the fixed rasterizer configuration.
	Rasterizer RasterizerSettings
	// Depth is the fixed depth test configuration.
	Depth DepthSettings
	// Viewports are the initial viewports; may be replaced per frame.
	Viewports []Viewport
	// ScissorRects are the initial scissors; may be replaced per frame.
	ScissorRects []ScissorRect
}

// renderState is the implementation of the RenderState interface.
type renderState struct {
	label    string
	settings Settings
	// native is the backend pipeline state object, built once by the graphics
	// context. Viewports and scissors are dynamic and never invalidate it.
	native any
}

// RenderState is a baked pipeline state: program plus fixed-function
// configuration. Everything except viewports and scissor rectangles is
// immutable after creation, so backends can compile the native pipeline once
// and reuse it for every frame.
type RenderState interface {
	// Label returns the debug label for this state.
	Label() string

	// Program returns the program baked into this state.
	Program() program.Program

	// Settings returns the full creation settings, including the current
	// viewports and scissors.
	Settings() Settings

	// Viewports returns the current viewports.
	Viewports() []Viewport

	// ScissorRects returns the current scissor rectangles.
	ScissorRects() []ScissorRect

	// SetViewports replaces the viewports. Viewports are dynamic state, so the
	// baked pipeline is unaffected; typically called after a window resize.
	//
	// Parameters:
	//   - viewports: the new viewports, at least one
	//
	// Returns:
	//   - error: an error if no viewport is given
	SetViewports(viewports ...Viewport) error

	// SetScissorRects replaces the scissor rectangles.
	//
	// Parameters:
	//   - rects: the new scissor rectangles, at least one
	//
	// Returns:
	//   - error: an error if no rectangle is given
	SetScissorRects(rects ...ScissorRect) error

	// Native returns the backend-native pipeline object, or nil before
	// initialization.
	Native() any

	// SetNative stores the backend-native pipeline object. Called by the
	// graphics context, not by user code.
	SetNative(native any)
}

var _ RenderState = &renderState{}

// New creates a RenderState around a program. At least one viewport and one
// scissor rectangle must be present, since every draw needs them.
//
// Parameters:
//   - label: debug label for the state
//   - settings: program, fixed-function configuration and initial dynamic state
//
// Returns:
//   - RenderState: the new render state
//   - error: an error if the settings violate the state contract
func New(label string, settings Settings) (RenderState, error) {
	if settings.Program == nil {
		return nil, fmt.Errorf("render state %q: program is required", label)
	}
	if len(settings.Viewports) == 0 {
		return nil, fmt.Errorf("render state %q: at least one viewport is required", label)
	}
	if len(settings.ScissorRects) == 0 {
		return nil, fmt.Errorf("render state %q: at least one scissor rect is required", label)
	}
	return &renderState{label: label, settings: settings}, nil
}

func (s *renderState) Label() string {
	return s.label
}

func (s *renderState) Program() program.Program {
	return s.settings.Program
}

func (s *renderState) Settings() Settings {
	return s.settings
}

func (s *renderState) Viewports() []Viewport {
	return s.settings.Viewports
}

func (s *renderState) ScissorRects() []ScissorRect {
	return s.settings.ScissorRects
}

func (s *renderState) SetViewports(viewports ...Viewport) error {
	if len(viewports) == 0 {
		return fmt.Errorf("render state %q: at least one viewport is required", s.label)
	}
	s.settings.Viewports = viewports
	return nil
}

func (s *renderState) SetScissorRects(rects ...ScissorRect) error {
	if len(rects) == 0 {
		return fmt.Errorf("render state %q: at least one scissor rect is required", s.label)
	}
	s.settings.ScissorRects = rects
	return nil
}

func (s *renderState) Native() any {
	return s.native
}

func (s *renderState) SetNative(native any) {
	s.native = native
}
