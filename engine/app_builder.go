package engine

import (
	"github.com/basalt3d/basalt/common"
	"github.com/basalt3d/basalt/engine/profiler"
	"github.com/basalt3d/basalt/engine/window"
)

// AppBuilderOption is a functional option used to configure an App during
// construction.
type AppBuilderOption func(*app)

// WithWindow supplies a preconfigured window instead of the default one.
//
// Parameters:
//   - w: the window to render into
//
// Returns:
//   - AppBuilderOption: a function that sets the window
func WithWindow(w window.Window) AppBuilderOption {
	return func(a *app) {
		a.window = w
	}
}

// WithBackend selects a registered graphics backend by name instead of the
// highest-priority default.
//
// Parameters:
//   - name: the registered backend name
//
// Returns:
//   - AppBuilderOption: a function that sets the backend name
func WithBackend(name string) AppBuilderOption {
	return func(a *app) {
		a.backendName = name
	}
}

// WithClearColor sets the color the swapchain is cleared to each frame.
//
// Parameters:
//   - color: the clear color
//
// Returns:
//   - AppBuilderOption: a function that sets the clear color
func WithClearColor(color common.Color) AppBuilderOption {
	return func(a *app) {
		a.clearColor = color
	}
}

// WithDepthFormat sets the depth attachment format. PixelFormatUnknown
// disables the depth attachment.
//
// Parameters:
//   - format: the depth pixel format
//
// Returns:
//   - AppBuilderOption: a function that sets the depth format
func WithDepthFormat(format common.PixelFormat) AppBuilderOption {
	return func(a *app) {
		a.depthFormat = format
	}
}

// WithFrameBuffersCount sets the frames-in-flight ring size.
//
// Parameters:
//   - count: the ring size, minimum 2
//
// Returns:
//   - AppBuilderOption: a function that sets the ring size
func WithFrameBuffersCount(count uint32) AppBuilderOption {
	return func(a *app) {
		a.frameBuffersCount = count
	}
}

// WithVSync enables or disables presentation synchronized to the display.
//
// Parameters:
//   - enabled: true to sync presentation to the display refresh
//
// Returns:
//   - AppBuilderOption: a function that sets vsync
func WithVSync(enabled bool) AppBuilderOption {
	return func(a *app) {
		a.vsync = enabled
	}
}

// WithProfiling enables per-second frame statistics logging.
//
// Parameters:
//   - enabled: true to log frame statistics
//
// Returns:
//   - AppBuilderOption: a function that toggles profiling
func WithProfiling(enabled bool) AppBuilderOption {
	return func(a *app) {
		a.profilingEnabled = enabled
	}
}

// WithProfiler supplies a preconfigured profiler and enables profiling.
//
// Parameters:
//   - p: the profiler to use
//
// Returns:
//   - AppBuilderOption: a function that sets the profiler
func WithProfiler(p *profiler.Profiler) AppBuilderOption {
	return func(a *app) {
		a.profiler = p
		a.profilingEnabled = true
	}
}
