// Package engine ties the windowing layer and the graphics core into an
// application framework: it owns the device registry, the rendering context
// and the render loop, and hands the per-frame callbacks everything they need
// to record and submit GPU work.
package engine

import (
	"fmt"
	"time"

	"github.com/basalt3d/basalt/common"
	"github.com/basalt3d/basalt/engine/graphics"
	"github.com/basalt3d/basalt/engine/profiler"
	"github.com/basalt3d/basalt/engine/window"
)

// app is the implementation of the App interface.
type app struct {
	window window.Window

	system  graphics.System
	device  *graphics.Device
	context graphics.RenderContext

	backendName       string
	clearColor        common.Color
	depthFormat       common.PixelFormat
	frameBuffersCount uint32
	vsync             bool

	profiler         *profiler.Profiler
	profilingEnabled bool

	onInit   func() error
	onUpdate func(deltaTime float32)
	onRender func(frame *graphics.Frame) error
	onResize func(size common.FrameSize)

	lastFrameTime time.Time
}

// App runs the standard render loop: wait for the current ring slot, update
// application state, record and execute the frame's command list, present.
// Everything runs on the thread owning the window, which the graphics
// backends require.
type App interface {
	// Window returns the underlying window.
	Window() window.Window

	// Context returns the rendering context. Nil before Run.
	Context() graphics.RenderContext

	// Device returns the adapter the app renders on. Nil before Run.
	Device() *graphics.Device

	// SetInitCallback registers the function called once after the context is
	// created and before initialization completes. Create programs, states
	// and resources here; uploads issued inside are batched and flushed by
	// CompleteInitialization.
	//
	// Parameters:
	//   - callback: the initialization function; an error aborts Run
	SetInitCallback(callback func() error)

	// SetUpdateCallback registers the function called each frame before
	// recording, receiving the delta time in seconds. Use it for animation
	// and per-frame uniform computation.
	//
	// Parameters:
	//   - callback: the per-frame update function
	SetUpdateCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function that records and executes the
	// frame's command list. Present runs right after it returns; an error
	// skips presentation and stops the loop.
	//
	// Parameters:
	//   - callback: the per-frame render function receiving the current ring slot
	SetRenderCallback(callback func(frame *graphics.Frame) error)

	// SetResizeCallback registers the function called after the swap-chain has
	// been recreated for a new surface size. Adjust viewports, scissors and
	// the camera aspect here.
	//
	// Parameters:
	//   - callback: the resize function receiving the new surface size
	SetResizeCallback(callback func(size common.FrameSize))

	// Run creates the graphics stack, invokes the init callback and drives
	// the render loop until the window closes. Blocks the calling goroutine.
	//
	// Returns:
	//   - error: an error if graphics setup or a frame fails
	Run() error

	// Quit closes the window, ending the render loop.
	Quit()
}

var _ App = &app{}

// NewApp creates an application with the given options. The window is
// created immediately; the graphics stack is created by Run.
//
// Parameters:
//   - options: functional options to configure the application
//
// Returns:
//   - App: the configured application
func NewApp(options ...AppBuilderOption) App {
	a := &app{
		clearColor:        common.Color{R: 0.1, G: 0.1, B: 0.1, A: 1},
		depthFormat:       common.PixelFormatDepth32Float,
		frameBuffersCount: graphics.DefaultFrameBuffersCount,
		vsync:             true,
	}
	for _, option := range options {
		option(a)
	}
	if a.window == nil {
		a.window = window.NewWindow()
	}
	if a.profilingEnabled && a.profiler == nil {
		a.profiler = profiler.NewProfiler()
	}
	return a
}

func (a *app) Window() window.Window {
	return a.window
}

func (a *app) Context() graphics.RenderContext {
	return a.context
}

func (a *app) Device() *graphics.Device {
	return a.device
}

func (a *app) SetInitCallback(callback func() error) {
	a.onInit = callback
}

func (a *app) SetUpdateCallback(callback func(deltaTime float32)) {
	a.onUpdate = callback
}

func (a *app) SetRenderCallback(callback func(frame *graphics.Frame) error) {
	a.onRender = callback
}

func (a *app) SetResizeCallback(callback func(size common.FrameSize)) {
	a.onResize = callback
}

func (a *app) Run() error {
	if err := a.setupGraphics(); err != nil {
		return err
	}
	defer a.teardown()

	if a.onInit != nil {
		if err := a.onInit(); err != nil {
			return fmt.Errorf("engine: init: %w", err)
		}
	}
	if err := a.context.CompleteInitialization(); err != nil {
		return err
	}

	var frameErr error
	a.lastFrameTime = time.Now()
	a.window.SetUpdateCallback(func() {
		if err := a.renderFrame(); err != nil {
			frameErr = err
			a.Quit()
		}
	})
	a.window.ProcessMessages()
	return frameErr
}

// setupGraphics builds the device registry and rendering context around the
// window surface.
func (a *app) setupGraphics() error {
	var systemOptions []graphics.SystemOption
	if a.backendName != "" {
		systemOptions = append(systemOptions, graphics.WithBackendName(a.backendName))
	}
	system, err := graphics.NewSystem(systemOptions...)
	if err != nil {
		return err
	}
	a.system = system

	system.UpdateGpuDevices(graphics.DeviceFeatureBasicRendering | graphics.DeviceFeaturePresentToWindow)
	device, err := system.DefaultDevice()
	if err != nil {
		return err
	}
	a.device = device

	context, err := graphics.NewRenderContext(system, device, graphics.ContextSettings{
		Surface:           a.window.NativeHandle(),
		FrameSize:         a.window.Size(),
		DepthFormat:       a.depthFormat,
		ClearColor:        a.clearColor,
		FrameBuffersCount: a.frameBuffersCount,
		VSync:             a.vsync,
	})
	if err != nil {
		return err
	}
	a.context = context

	a.window.SetResizeCallback(func(size common.FrameSize) {
		if context.Resize(size) && a.onResize != nil {
			a.onResize(size)
		}
	})
	a.window.SetMinimizeCallback(func(minimized bool) {
		context.SetMinimized(minimized)
	})
	return nil
}

// renderFrame runs one iteration of the render loop.
func (a *app) renderFrame() error {
	now := time.Now()
	deltaTime := float32(now.Sub(a.lastFrameTime).Seconds())
	a.lastFrameTime = now

	// Minimized or mid-resize: skip the frame and retry next tick.
	if !a.context.ReadyToRender() {
		return nil
	}

	// Block until the current ring slot's previous GPU work completes, so the
	// update below never overwrites data the GPU is still reading.
	a.context.WaitForGpu(graphics.WaitReasonFramePresented)

	if a.onUpdate != nil {
		a.onUpdate(deltaTime)
	}
	if a.onRender != nil {
		if err := a.onRender(a.context.CurrentFrame()); err != nil {
			return err
		}
	}
	if err := a.context.Present(); err != nil {
		return err
	}

	if a.profilingEnabled {
		a.profiler.Tick()
	}
	return nil
}

func (a *app) teardown() {
	if a.context != nil {
		a.context.Release()
	}
}

func (a *app) Quit() {
	_ = a.window.Close()
}
