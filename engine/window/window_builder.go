package window

import "github.com/basalt3d/basalt/common"

// WindowBuilderOption is a functional option used to configure a Window
// during construction.
type WindowBuilderOption func(*engineWindow)

// WithTitle sets the window title.
//
// Parameters:
//   - title: the title bar text
//
// Returns:
//   - WindowBuilderOption: a function that sets the title
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the initial client area size in pixels.
//
// Parameters:
//   - size: the requested size; the created framebuffer may differ on
//     high-DPI displays
//
// Returns:
//   - WindowBuilderOption: a function that sets the size
func WithSize(size common.FrameSize) WindowBuilderOption {
	return func(w *engineWindow) {
		w.size = size
	}
}
