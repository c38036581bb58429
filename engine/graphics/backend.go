package graphics

import (
	"errors"
	"sort"
	"sync"

	"github.com/basalt3d/basalt/common"
	"github.com/basalt3d/basalt/engine/graphics/program"
	"github.com/basalt3d/basalt/engine/graphics/resource"
	"github.com/basalt3d/basalt/engine/graphics/state"
)

// Registry errors.
var (
	// ErrBackendNotFound is returned when a named backend is not registered.
	ErrBackendNotFound = errors.New("graphics: backend not found")

	// ErrNoBackends is returned when no backend is registered at all.
	ErrNoBackends = errors.New("graphics: no backends registered")
)

// Backend is one native graphics API implementation. A backend is selected
// once at system creation and never per call; everything the engine does with
// the GPU goes through the ContextBackend it creates.
type Backend interface {
	// Name returns the backend identifier used for registry lookup.
	Name() string

	// Software reports whether this backend rasterizes on the CPU.
	Software() bool

	// EnumerateDevices lists the adapters this backend can use, annotated
	// with their capabilities.
	//
	// Parameters:
	//   - required: feature bitmask devices are filtered by; zero keeps all
	//
	// Returns:
	//   - []DeviceInfo: the matching adapters
	//   - error: an error if enumeration fails
	EnumerateDevices(required DeviceFeatures) ([]DeviceInfo, error)

	// NewContext creates the backend half of a rendering context on the given
	// device: presentation surface, swap-chain images, depth target.
	//
	// Parameters:
	//   - device: the adapter to render on
	//   - settings: surface size, formats, frame buffer count, vsync
	//
	// Returns:
	//   - ContextBackend: the backend context
	//   - error: an error if surface or swap-chain creation fails
	NewContext(device *Device, settings ContextSettings) (ContextBackend, error)
}

// ContextBackend is the per-context native API surface the engine core drives.
// All methods are called from the thread owning the rendering context, except
// fence signaling which backends perform from their own completion path.
type ContextBackend interface {
	// InitBuffer allocates backend memory for a buffer and stores the native
	// handle on it.
	InitBuffer(buf resource.Buffer) error

	// InitTexture allocates backend memory for a texture and stores the
	// native handle on it. Staged subresources are not uploaded here.
	InitTexture(tex resource.Texture) error

	// InitSampler creates the native sampler object.
	InitSampler(s resource.Sampler) error

	// InitProgram builds native shader modules and the pipeline layout.
	InitProgram(p program.Program) error

	// InitState compiles the native pipeline state object.
	InitState(st state.RenderState) error

	// WriteBuffer copies data into a buffer at the given byte offset. The
	// write completes before any subsequently executed command list reads the
	// buffer.
	WriteBuffer(buf resource.Buffer, offset uint64, data []byte) error

	// WriteTexture copies subresource data into a texture.
	WriteTexture(tex resource.Texture, subresources []resource.SubresourceData) error

	// ReadBuffer copies a buffer's full aligned contents back to the CPU.
	// Backends without host-visible readback return ErrReadbackUnsupported.
	ReadBuffer(buf resource.Buffer) ([]byte, error)

	// Execute submits committed command lists in array order and signals the
	// fence with the given value when the GPU work completes. Execute itself
	// does not block.
	//
	// Parameters:
	//   - lists: the committed command lists, executed in order
	//   - fence: the fence to signal on completion
	//   - value: the fence value to signal
	//
	// Returns:
	//   - error: an error if submission fails
	Execute(lists []CommandList, fence *Fence, value uint64) error

	// Present swaps the back buffer to the surface and signals the fence with
	// the given value once presentation completes.
	Present(fence *Fence, value uint64) error

	// Resize recreates the swap-chain and depth target for a new surface size.
	Resize(size common.FrameSize) error

	// Release frees all backend objects. The context is unusable afterwards.
	Release()
}

// backendRegistry holds the registered backends guarded by a mutex, since
// registration from init functions may race with system creation in tests.
var backendRegistry = struct {
	sync.Mutex
	entries map[string]registeredBackend
}{entries: make(map[string]registeredBackend)}

type registeredBackend struct {
	backend  Backend
	priority int
}

// RegisterBackend adds a backend to the registry. Higher priority wins the
// default selection; hardware backends register above the software one.
// Registering the same name twice replaces the earlier entry.
//
// Parameters:
//   - b: the backend to register
//   - priority: default-selection priority, higher preferred
func RegisterBackend(b Backend, priority int) {
	backendRegistry.Lock()
	defer backendRegistry.Unlock()
	backendRegistry.entries[b.Name()] = registeredBackend{backend: b, priority: priority}
}

// GetBackend looks a backend up by name.
//
// Parameters:
//   - name: the backend identifier
//
// Returns:
//   - Backend: the registered backend
//   - error: ErrBackendNotFound if the name is unknown
func GetBackend(name string) (Backend, error) {
	backendRegistry.Lock()
	defer backendRegistry.Unlock()
	entry, ok := backendRegistry.entries[name]
	if !ok {
		return nil, ErrBackendNotFound
	}
	return entry.backend, nil
}

// DefaultBackend returns the highest-priority registered backend. Names break
// priority ties so the choice is deterministic.
//
// Returns:
//   - Backend: the selected backend
//   - error: ErrNoBackends if the registry is empty
func DefaultBackend() (Backend, error) {
	backendRegistry.Lock()
	defer backendRegistry.Unlock()
	if len(backendRegistry.entries) == 0 {
		return nil, ErrNoBackends
	}
	names := make([]string, 0, len(backendRegistry.entries))
	for name := range backendRegistry.entries {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi := backendRegistry.entries[names[i]].priority
		pj := backendRegistry.entries[names[j]].priority
		if pi != pj {
			return pi > pj
		}
		return names[i] < names[j]
	})
	return backendRegistry.entries[names[0]].backend, nil
}
