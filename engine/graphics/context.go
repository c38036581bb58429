package graphics

import (
	"errors"
	"fmt"

	"github.com/basalt3d/basalt/common"
	"github.com/basalt3d/basalt/engine/graphics/program"
	"github.com/basalt3d/basalt/engine/graphics/resource"
	"github.com/basalt3d/basalt/engine/graphics/state"
)

// ErrContextNotReady is returned by operations that require a Ready context.
var ErrContextNotReady = errors.New("graphics: context not ready")

// DefaultFrameBuffersCount is the frames-in-flight ring size used when the
// settings leave it zero.
const DefaultFrameBuffersCount = 3

// ContextState tracks a rendering context through its lifecycle.
type ContextState int

const (
	// ContextStateCreated is the state right after construction, before any
	// resource initialization.
	ContextStateCreated ContextState = iota

	// ContextStateInitializing has resource uploads pending flush.
	ContextStateInitializing

	// ContextStateReady accepts rendering.
	ContextStateReady

	// ContextStateResizing is mid swap-chain recreation.
	ContextStateResizing

	// ContextStateReleasing is draining GPU work before teardown.
	ContextStateReleasing

	// ContextStateReleased is fully torn down.
	ContextStateReleased
)

// String returns the state name for logs and error messages.
func (s ContextState) String() string {
	switch s {
	case ContextStateCreated:
		return "Created"
	case ContextStateInitializing:
		return "Initializing"
	case ContextStateReady:
		return "Ready"
	case ContextStateResizing:
		return "Resizing"
	case ContextStateReleasing:
		return "Releasing"
	case ContextStateReleased:
		return "Released"
	default:
		return "Unknown"
	}
}

// WaitReason selects what WaitForGpu waits for.
type WaitReason int

const (
	// WaitReasonRenderComplete waits for all in-flight frames. Used before
	// releasing resources the GPU may still read.
	WaitReasonRenderComplete WaitReason = iota

	// WaitReasonFramePresented waits only for the current ring slot to become
	// free, bounding latency to the frame buffer count. Used once per render
	// loop iteration.
	WaitReasonFramePresented
)

// ContextSettings configures a rendering context's surface and frame ring.
type ContextSettings struct {
	// Surface is the platform window handle the backend presents to. Opaque
	// to the core beyond size and format; nil for headless contexts.
	Surface any
	// FrameSize is the initial surface size in pixels.
	FrameSize common.FrameSize
	// ColorFormat is the swap-chain pixel format; zero means BGRA8Unorm.
	ColorFormat common.PixelFormat
	// DepthFormat is the depth target format; PixelFormatUnknown disables depth.
	DepthFormat common.PixelFormat
	// ClearColor is the color targets are cleared to each frame.
	ClearColor common.Color
	// ClearDepth is the depth clear value; zero means 1.
	ClearDepth float64
	// FrameBuffersCount is the frames-in-flight ring size; zero means 3.
	FrameBuffersCount uint32
	// VSync synchronizes presentation with the display refresh.
	VSync bool
}

// renderContext is the implementation of the RenderContext interface.
type renderContext struct {
	device   *Device
	settings ContextSettings
	backend  ContextBackend
	fence    *Fence
	queue    *CommandQueue

	frames     []*Frame
	frameIndex uint32

	ctxState  ContextState
	minimized bool

	// deferred holds uploads issued before CompleteInitialization, flushed as
	// one batch so the first rendered frame does not pay upload latency.
	deferred []func() error
}

// RenderContext owns a presentation surface and the frames-in-flight ring. It
// is the single synchronization point between CPU recording and GPU
// execution, and it performs all GPU uploads on behalf of resources.
//
// All methods must be called from the thread that owns the render loop.
type RenderContext interface {
	resource.Uploader

	// Device returns the adapter this context renders on.
	Device() *Device

	// Settings returns the context settings with defaults applied.
	Settings() ContextSettings

	// State returns the current lifecycle state.
	State() ContextState

	// FrameSize returns the current surface size.
	FrameSize() common.FrameSize

	// FrameBuffersCount returns the frames-in-flight ring size.
	FrameBuffersCount() uint32

	// FrameIndex returns the current ring slot index.
	FrameIndex() uint32

	// CurrentFrame returns the current ring slot.
	CurrentFrame() *Frame

	// Queue returns the render command queue.
	Queue() *CommandQueue

	// ReadyToRender reports whether rendering may proceed. False while
	// minimized, mid-resize, or before initialization completes; the caller
	// skips the frame and retries next tick.
	ReadyToRender() bool

	// SetMinimized records the window's minimized state, driven by the
	// windowing layer's iconify events.
	SetMinimized(minimized bool)

	// InitBuffer allocates GPU memory for a buffer and attaches this context
	// as its uploader.
	InitBuffer(buf resource.Buffer) error

	// InitTexture allocates GPU memory for a texture, attaches this context
	// as its uploader and uploads any subresources staged at construction.
	InitTexture(tex resource.Texture) error

	// InitSampler creates the native sampler object.
	InitSampler(s resource.Sampler) error

	// InitProgram builds the native shader modules and pipeline layout.
	InitProgram(p program.Program) error

	// InitState compiles the native pipeline for a render state.
	InitState(st state.RenderState) error

	// CompleteInitialization flushes all uploads deferred by resource SetData
	// calls issued before the first frame, then blocks until the GPU has
	// consumed them. A barrier, not a no-op: after it returns the context is
	// Ready and the first frame pays no upload latency.
	//
	// Returns:
	//   - error: the first deferred upload failure, aborting the flush
	CompleteInitialization() error

	// WaitForGpu blocks until the GPU reaches the fence point selected by
	// reason. This blocking is intentional backpressure bounding the
	// pipelining depth.
	//
	// Parameters:
	//   - reason: what to wait for
	WaitForGpu(reason WaitReason)

	// Present submits the swap and advances the ring index. If the incoming
	// ring slot's previous GPU work has not completed, Present blocks on it
	// first, so the pipelining depth never exceeds FrameBuffersCount.
	//
	// Returns:
	//   - error: ErrContextNotReady if the context cannot present, or a
	//     backend presentation failure
	Present() error

	// Resize recreates the swap-chain and depth targets for a new size.
	// Previously configured render state viewports and scissors are not
	// adjusted; the caller must reset them. Returns false without touching
	// anything if the context is minimized, the size is unchanged, or the
	// size is zero.
	//
	// Parameters:
	//   - size: the new surface size
	//
	// Returns:
	//   - bool: whether the resize was performed
	Resize(size common.FrameSize) bool

	// Release drains all in-flight GPU work and frees every backend object.
	// The context is unusable afterwards. Release is idempotent.
	Release()
}

var _ RenderContext = &renderContext{}

// NewRenderContext creates a rendering context on a device of the given
// system. The backend allocates the presentation surface and swap-chain
// sized per the settings; each ring slot gets its own command list.
//
// Parameters:
//   - sys: the system whose backend creates the native context
//   - device: the adapter to render on
//   - settings: surface, formats and ring configuration
//
// Returns:
//   - RenderContext: the new context in the Created state
//   - error: an error if backend context creation fails
func NewRenderContext(sys System, device *Device, settings ContextSettings) (RenderContext, error) {
	if device == nil {
		return nil, errors.New("graphics: context requires a device")
	}
	applyContextDefaults(&settings)

	backend, err := sys.Backend().NewContext(device, settings)
	if err != nil {
		return nil, fmt.Errorf("graphics: create context: %w", err)
	}

	fence := NewFence()
	c := &renderContext{
		device:   device,
		settings: settings,
		backend:  backend,
		fence:    fence,
		ctxState: ContextStateCreated,
	}
	c.queue = newCommandQueue("render", fence, backend)

	c.frames = make([]*Frame, settings.FrameBuffersCount)
	for i := range c.frames {
		c.frames[i] = &Frame{Index: uint32(i), CommandList: NewCommandList()}
	}

	device.AddRef()
	logger().Info("render context created",
		"device", device.Name(),
		"size", settings.FrameSize.String(),
		"frames", settings.FrameBuffersCount,
		"vsync", settings.VSync)
	return c, nil
}

func applyContextDefaults(settings *ContextSettings) {
	if settings.ColorFormat == common.PixelFormatUnknown {
		settings.ColorFormat = common.PixelFormatBGRA8Unorm
	}
	if settings.ClearDepth == 0 {
		settings.ClearDepth = 1
	}
	if settings.FrameBuffersCount == 0 {
		settings.FrameBuffersCount = DefaultFrameBuffersCount
	}
}

func (c *renderContext) Device() *Device {
	return c.device
}

func (c *renderContext) Settings() ContextSettings {
	return c.settings
}

func (c *renderContext) State() ContextState {
	return c.ctxState
}

func (c *renderContext) FrameSize() common.FrameSize {
	return c.settings.FrameSize
}

func (c *renderContext) FrameBuffersCount() uint32 {
	return c.settings.FrameBuffersCount
}

func (c *renderContext) FrameIndex() uint32 {
	return c.frameIndex
}

func (c *renderContext) CurrentFrame() *Frame {
	return c.frames[c.frameIndex]
}

func (c *renderContext) Queue() *CommandQueue {
	return c.queue
}

func (c *renderContext) ReadyToRender() bool {
	return c.ctxState == ContextStateReady && !c.minimized
}

func (c *renderContext) SetMinimized(minimized bool) {
	c.minimized = minimized
}

func (c *renderContext) InitBuffer(buf resource.Buffer) error {
	if err := c.backend.InitBuffer(buf); err != nil {
		return err
	}
	buf.SetUploader(c)
	c.markInitializing()
	return nil
}

func (c *renderContext) InitTexture(tex resource.Texture) error {
	if err := c.backend.InitTexture(tex); err != nil {
		return err
	}
	tex.SetUploader(c)
	c.markInitializing()
	if staged := tex.StagedSubresources(); len(staged) > 0 {
		return c.WriteTexture(tex, staged)
	}
	return nil
}

func (c *renderContext) InitSampler(s resource.Sampler) error {
	if err := c.backend.InitSampler(s); err != nil {
		return err
	}
	s.SetUploader(c)
	return nil
}

func (c *renderContext) InitProgram(p program.Program) error {
	return c.backend.InitProgram(p)
}

func (c *renderContext) InitState(st state.RenderState) error {
	if err := c.InitProgram(st.Program()); err != nil {
		return err
	}
	return c.backend.InitState(st)
}

// markInitializing moves a freshly created context into Initializing once the
// first resource shows up.
func (c *renderContext) markInitializing() {
	if c.ctxState == ContextStateCreated {
		c.ctxState = ContextStateInitializing
	}
}

// WriteBuffer implements resource.Uploader. Before CompleteInitialization the
// upload is deferred and flushed as one batch.
func (c *renderContext) WriteBuffer(buf resource.Buffer, offset uint64, data []byte) error {
	if c.ctxState == ContextStateCreated || c.ctxState == ContextStateInitializing {
		staged := make([]byte, len(data))
		copy(staged, data)
		c.deferred = append(c.deferred, func() error {
			return c.backend.WriteBuffer(buf, offset, staged)
		})
		return nil
	}
	return c.backend.WriteBuffer(buf, offset, data)
}

// WriteTexture implements resource.Uploader with the same deferral as
// WriteBuffer.
func (c *renderContext) WriteTexture(tex resource.Texture, subresources []resource.SubresourceData) error {
	if c.ctxState == ContextStateCreated || c.ctxState == ContextStateInitializing {
		c.deferred = append(c.deferred, func() error {
			return c.backend.WriteTexture(tex, subresources)
		})
		return nil
	}
	return c.backend.WriteTexture(tex, subresources)
}

// ReadBuffer implements resource.Uploader.
func (c *renderContext) ReadBuffer(buf resource.Buffer) ([]byte, error) {
	return c.backend.ReadBuffer(buf)
}

func (c *renderContext) CompleteInitialization() error {
	for _, upload := range c.deferred {
		if err := upload(); err != nil {
			return fmt.Errorf("graphics: deferred upload: %w", err)
		}
	}
	uploads := len(c.deferred)
	c.deferred = nil
	c.WaitForGpu(WaitReasonRenderComplete)
	c.ctxState = ContextStateReady
	logger().Debug("context initialization complete", "deferred_uploads", uploads)
	return nil
}

func (c *renderContext) WaitForGpu(reason WaitReason) {
	switch reason {
	case WaitReasonFramePresented:
		c.fence.Wait(c.frames[c.frameIndex].fenceValue)
	default:
		c.fence.Wait(c.fence.LastValue())
	}
}

func (c *renderContext) Present() error {
	if c.ctxState != ContextStateReady {
		return fmt.Errorf("%w: state %s", ErrContextNotReady, c.ctxState)
	}

	// The slot being presented is about to be reused FrameBuffersCount frames
	// from now; waiting on its previous fence value here bounds the pipeline
	// depth even when the caller skips WaitForGpu(FramePresented).
	frame := c.frames[c.frameIndex]
	c.fence.Wait(frame.fenceValue)

	value := c.fence.NextValue()
	if err := c.backend.Present(c.fence, value); err != nil {
		return fmt.Errorf("graphics: present: %w", err)
	}
	frame.fenceValue = value
	c.frameIndex = (c.frameIndex + 1) % c.settings.FrameBuffersCount
	return nil
}

func (c *renderContext) Resize(size common.FrameSize) bool {
	if c.minimized || size.IsZero() || size == c.settings.FrameSize {
		return false
	}
	if c.ctxState != ContextStateReady {
		return false
	}

	c.ctxState = ContextStateResizing
	c.WaitForGpu(WaitReasonRenderComplete)
	if err := c.backend.Resize(size); err != nil {
		logger().Error("swap-chain resize failed", "size", size.String(), "error", err)
		c.ctxState = ContextStateReady
		return false
	}
	c.settings.FrameSize = size
	c.ctxState = ContextStateReady
	logger().Debug("context resized", "size", size.String())
	return true
}

func (c *renderContext) Release() {
	if c.ctxState == ContextStateReleased {
		return
	}
	c.ctxState = ContextStateReleasing
	c.WaitForGpu(WaitReasonRenderComplete)
	for _, frame := range c.frames {
		frame.CommandList.Release()
	}
	c.backend.Release()
	c.device.Release()
	c.ctxState = ContextStateReleased
	logger().Info("render context released")
}
