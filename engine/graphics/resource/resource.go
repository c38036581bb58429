// Package resource defines the GPU-resident data objects of the engine:
// buffers, textures and samplers. Resources are passive holders of staging
// data plus a backend-native handle; the graphics context and its backend
// populate the native handle and perform the actual GPU uploads.
package resource

import (
	"errors"
	"sync/atomic"
)

// Common resource errors.
var (
	// ErrNotInitialized is returned when an upload or readback is requested
	// before the resource has been initialized by a graphics context.
	ErrNotInitialized = errors.New("resource: not initialized by a graphics context")

	// ErrSizeExceeded is returned when uploaded data does not fit the
	// resource's declared size.
	ErrSizeExceeded = errors.New("resource: data exceeds declared size")

	// ErrReadbackUnsupported is returned by GetData when the active backend
	// cannot read GPU memory back to the CPU.
	ErrReadbackUnsupported = errors.New("resource: readback not supported by backend")
)

// Uploader performs GPU uploads and readbacks for resources. It is implemented
// by the graphics context, which routes the calls to the active backend and
// defers uploads issued before context initialization completes.
type Uploader interface {
	// WriteBuffer uploads data to a buffer at the given byte offset.
	// The upload is complete before any command list reading the buffer executes.
	//
	// Parameters:
	//   - buf: the target buffer
	//   - offset: the destination byte offset
	//   - data: the bytes to upload
	//
	// Returns:
	//   - error: an error if the upload fails or violates the buffer size
	WriteBuffer(buf Buffer, offset uint64, data []byte) error

	// WriteTexture uploads one or more subresources (mip levels, cube faces)
	// to a texture.
	//
	// Parameters:
	//   - tex: the target texture
	//   - subresources: the subresource data to upload
	//
	// Returns:
	//   - error: an error if the upload fails
	WriteTexture(tex Texture, subresources []SubresourceData) error

	// ReadBuffer reads a buffer's full aligned contents back to the CPU.
	// Only supported by backends with host-visible memory (e.g., software).
	//
	// Parameters:
	//   - buf: the buffer to read
	//
	// Returns:
	//   - []byte: the buffer contents, aligned size in length
	//   - error: ErrReadbackUnsupported if the backend cannot read back
	ReadBuffer(buf Buffer) ([]byte, error)
}

// Resource is the common contract of all GPU resources. Resources are
// reference counted: bindings and command lists retain the resources they
// reference, and the backend deallocation runs when the last reference is
// released. The graph is acyclic (bindings reference resources, never the
// other way around), so plain counting suffices.
type Resource interface {
	// Label returns the debug label for this resource.
	Label() string

	// Native returns the backend-native object for this resource, or nil if
	// the resource has not been initialized by a graphics context.
	Native() any

	// SetNative stores the backend-native object. Called by the graphics
	// context during resource initialization, not by user code.
	SetNative(native any)

	// SetUploader attaches the uploader used by SetData calls. Called by the
	// graphics context during resource initialization, not by user code.
	SetUploader(u Uploader)

	// AddRef increments the reference count.
	AddRef()

	// Release decrements the reference count and runs the release hook when
	// it reaches zero.
	Release()
}

// shared implements the reference-counted part of Resource and is embedded by
// the concrete resource types.
type shared struct {
	label    string
	native   any
	uploader Uploader
	refs     atomic.Int32

	// onRelease frees the backend-native object. Installed by the graphics
	// context together with the native handle.
	onRelease func()
}

func newShared(label string) shared {
	s := shared{label: label}
	s.refs.Store(1)
	return s
}

func (s *shared) Label() string {
	return s.label
}

func (s *shared) Native() any {
	return s.native
}

func (s *shared) SetNative(native any) {
	s.native = native
}

func (s *shared) SetUploader(u Uploader) {
	s.uploader = u
}

// SetReleaseHook installs the function run when the reference count reaches
// zero. Called by the graphics context during resource initialization.
func (s *shared) SetReleaseHook(hook func()) {
	s.onRelease = hook
}

func (s *shared) AddRef() {
	s.refs.Add(1)
}

func (s *shared) Release() {
	if s.refs.Add(-1) != 0 {
		return
	}
	if s.onRelease != nil {
		s.onRelease()
		s.onRelease = nil
	}
	s.native = nil
	s.uploader = nil
}

// RefCount returns the current reference count. Intended for tests and
// diagnostics.
func (s *shared) RefCount() int32 {
	return s.refs.Load()
}
