// Package window provides platform windowing and input event handling for
// the engine's application framework.
package window

import (
	"fmt"
	"runtime"

	"github.com/basalt3d/basalt/common"
)

// Window wraps a platform window behind a common interface. The rendering
// context consumes it only as an opaque surface handle plus a size.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is
	// resized, with the new size in pixels.
	//
	// Parameters:
	//   - callback: function receiving the new framebuffer size
	SetResizeCallback(callback func(size common.FrameSize))

	// SetMinimizeCallback sets the function called when the window is
	// minimized or restored.
	//
	// Parameters:
	//   - callback: function receiving the minimized state
	SetMinimizeCallback(callback func(minimized bool))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = up/zoom in)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetMouseMoveCallback sets the callback for mouse movement.
	//
	// Parameters:
	//   - callback: function receiving mouse x, y position
	SetMouseMoveCallback(callback func(x, y int32))

	// NativeHandle returns the platform window handle the graphics backend
	// creates its presentation surface from, or nil before initialization.
	NativeHandle() any

	// IsMinimized reports whether the window is currently minimized.
	IsMinimized() bool

	// IsRunning returns true if the window is still active.
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop. Blocks until the window
	// is closed, calling the update callback each iteration.
	ProcessMessages()

	// Size returns the current framebuffer size in pixels.
	Size() common.FrameSize
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// size is the current framebuffer size in pixels.
	size common.FrameSize

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// minimized tracks the iconified state reported by the platform.
	minimized bool

	// onUpdate is called each iteration of the message loop (if set).
	onUpdate func()

	// onResize is called when the framebuffer is resized.
	onResize func(size common.FrameSize)

	// onMinimize is called when the window is minimized or restored.
	onMinimize func(minimized bool)

	// onScroll is called for mouse wheel events.
	onScroll func(delta float32)

	// onKeyDown is called when a key is pressed.
	onKeyDown func(keyCode uint32)

	// onKeyUp is called when a key is released.
	onKeyUp func(keyCode uint32)

	// onMouseMove is called when the mouse moves within the window.
	onMouseMove func(x, y int32)
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the configured window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title: "Basalt",
		size:  common.FrameSize{Width: 1280, Height: 720},
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(size common.FrameSize)) {
	w.onResize = callback
}

func (w *engineWindow) SetMinimizeCallback(callback func(minimized bool)) {
	w.onMinimize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y int32)) {
	w.onMouseMove = callback
}

func (w *engineWindow) NativeHandle() any {
	return platformNativeHandle(w)
}

func (w *engineWindow) IsMinimized() bool {
	return w.minimized
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Size() common.FrameSize {
	return w.size
}
