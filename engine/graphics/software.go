package graphics

import (
	"fmt"
	"sync"
	"time"

	"github.com/basalt3d/basalt/common"
	"github.com/basalt3d/basalt/engine/graphics/program"
	"github.com/basalt3d/basalt/engine/graphics/resource"
	"github.com/basalt3d/basalt/engine/graphics/state"
)

// SoftwareBackendName is the registry name of the built-in software backend.
const SoftwareBackendName = "software"

func init() {
	// The software backend is always available; hardware backends register
	// with a higher priority and win the default selection.
	RegisterBackend(NewSoftwareBackend(), 0)
}

// softwareBackend is a CPU-only backend. It keeps all resource memory
// host-side, executes submissions on a queue goroutine and signals fences
// asynchronously, which makes it a faithful stand-in for a real GPU in
// headless environments and tests.
type softwareBackend struct {
	delay time.Duration
}

var _ Backend = &softwareBackend{}

// NewSoftwareBackend creates a software backend instance.
//
// Parameters:
//   - opts: a variadic list of SoftwareBackendOption functions
//
// Returns:
//   - Backend: the software backend
func NewSoftwareBackend(opts ...SoftwareBackendOption) Backend {
	b := &softwareBackend{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SoftwareBackendOption is a functional option used to configure the software backend.
type SoftwareBackendOption func(*softwareBackend)

// WithExecutionDelay makes every submission take at least the given time
// before its fence value signals. Used by tests to observe in-flight frames.
//
// Parameters:
//   - delay: the simulated GPU execution time per submission
//
// Returns:
//   - SoftwareBackendOption: a function that sets the delay
func WithExecutionDelay(delay time.Duration) SoftwareBackendOption {
	return func(b *softwareBackend) {
		b.delay = delay
	}
}

func (b *softwareBackend) Name() string {
	return SoftwareBackendName
}

func (b *softwareBackend) Software() bool {
	return true
}

func (b *softwareBackend) EnumerateDevices(required DeviceFeatures) ([]DeviceInfo, error) {
	return []DeviceInfo{{
		Name:     "CPU Rasterizer",
		Software: true,
		Features: DeviceFeatureBasicRendering | DeviceFeaturePresentToWindow,
	}}, nil
}

func (b *softwareBackend) NewContext(device *Device, settings ContextSettings) (ContextBackend, error) {
	c := &softwareContext{
		settings: settings,
		delay:    b.delay,
		jobs:     make(chan func(), 64),
		done:     make(chan struct{}),
	}
	go c.run()
	return c, nil
}

// softwareContext is the per-context state of the software backend. The jobs
// channel is the GPU queue: submissions run on one goroutine in FIFO order,
// so fence values signal in submission order.
type softwareContext struct {
	settings ContextSettings
	delay    time.Duration

	jobs      chan func()
	done      chan struct{}
	closeOnce sync.Once

	// drawCount totals executed indexed draws, for diagnostics.
	drawCount sync.Map
}

var _ ContextBackend = &softwareContext{}

func (c *softwareContext) run() {
	defer close(c.done)
	for job := range c.jobs {
		job()
	}
}

// releaseHooker lets the backend install native cleanup on a resource.
type releaseHooker interface {
	SetReleaseHook(hook func())
}

// softwareBuffer is host-side buffer memory. Guarded by a mutex because the
// caller thread writes it while the queue goroutine reads during execution.
type softwareBuffer struct {
	mu   sync.Mutex
	data []byte
}

// softwareTexture is host-side texture memory keyed by layer and mip.
type softwareTexture struct {
	mu     sync.Mutex
	layers map[[2]uint32][]byte
}

func (c *softwareContext) InitBuffer(buf resource.Buffer) error {
	native := &softwareBuffer{data: make([]byte, buf.AlignedSize())}
	buf.SetNative(native)
	if h, ok := buf.(releaseHooker); ok {
		h.SetReleaseHook(func() {
			native.mu.Lock()
			native.data = nil
			native.mu.Unlock()
		})
	}
	return nil
}

func (c *softwareContext) InitTexture(tex resource.Texture) error {
	tex.SetNative(&softwareTexture{layers: make(map[[2]uint32][]byte)})
	return nil
}

func (c *softwareContext) InitSampler(s resource.Sampler) error {
	s.SetNative(s.Settings())
	return nil
}

func (c *softwareContext) InitProgram(p program.Program) error {
	if p.Native() == nil {
		p.SetNative(struct{}{})
	}
	return nil
}

func (c *softwareContext) InitState(st state.RenderState) error {
	if st.Native() == nil {
		st.SetNative(struct{}{})
	}
	return nil
}

func (c *softwareContext) WriteBuffer(buf resource.Buffer, offset uint64, data []byte) error {
	native, ok := buf.Native().(*softwareBuffer)
	if !ok {
		return fmt.Errorf("software: buffer %q: %w", buf.Label(), resource.ErrNotInitialized)
	}
	native.mu.Lock()
	defer native.mu.Unlock()
	if offset+uint64(len(data)) > uint64(len(native.data)) {
		return fmt.Errorf("software: buffer %q: %w", buf.Label(), resource.ErrSizeExceeded)
	}
	copy(native.data[offset:], data)
	return nil
}

func (c *softwareContext) WriteTexture(tex resource.Texture, subresources []resource.SubresourceData) error {
	native, ok := tex.Native().(*softwareTexture)
	if !ok {
		return fmt.Errorf("software: texture %q: %w", tex.Label(), resource.ErrNotInitialized)
	}
	native.mu.Lock()
	defer native.mu.Unlock()
	for _, sub := range subresources {
		pixels := make([]byte, len(sub.Pixels))
		copy(pixels, sub.Pixels)
		native.layers[[2]uint32{sub.Layer, sub.Mip}] = pixels
	}
	return nil
}

func (c *softwareContext) ReadBuffer(buf resource.Buffer) ([]byte, error) {
	native, ok := buf.Native().(*softwareBuffer)
	if !ok {
		return nil, fmt.Errorf("software: buffer %q: %w", buf.Label(), resource.ErrNotInitialized)
	}
	native.mu.Lock()
	defer native.mu.Unlock()
	out := make([]byte, len(native.data))
	copy(out, native.data)
	return out, nil
}

func (c *softwareContext) Execute(lists []CommandList, fence *Fence, value uint64) error {
	// Snapshot the recordings: the caller resets and re-records these lists
	// for later frames while the queue goroutine is still replaying them.
	recordings := make([][]Command, len(lists))
	for i, list := range lists {
		commands := list.Commands()
		recordings[i] = make([]Command, len(commands))
		copy(recordings[i], commands)
	}

	c.jobs <- func() {
		if c.delay > 0 {
			time.Sleep(c.delay)
		}
		draws := 0
		for _, commands := range recordings {
			for _, cmd := range commands {
				if cmd.Kind == CommandKindDrawIndexed {
					draws++
				}
			}
		}
		c.drawCount.Store(value, draws)
		fence.Signal(value)
	}
	return nil
}

func (c *softwareContext) Present(fence *Fence, value uint64) error {
	c.jobs <- func() {
		if c.delay > 0 {
			time.Sleep(c.delay)
		}
		fence.Signal(value)
	}
	return nil
}

func (c *softwareContext) Resize(size common.FrameSize) error {
	c.settings.FrameSize = size
	return nil
}

func (c *softwareContext) Release() {
	c.closeOnce.Do(func() {
		close(c.jobs)
		<-c.done
	})
}
