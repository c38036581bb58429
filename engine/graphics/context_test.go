package graphics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basalt3d/basalt/common"
	"github.com/basalt3d/basalt/engine/graphics/resource"
)

func newTestContext(t *testing.T, settings ContextSettings, opts ...SoftwareBackendOption) RenderContext {
	t.Helper()

	sys, err := NewSystem(WithBackend(NewSoftwareBackend(opts...)))
	require.NoError(t, err)
	require.NotEmpty(t, sys.UpdateGpuDevices(0))

	device, err := sys.DefaultDevice()
	require.NoError(t, err)

	if settings.FrameSize.IsZero() {
		settings.FrameSize = common.FrameSize{Width: 64, Height: 64}
	}
	ctx, err := NewRenderContext(sys, device, settings)
	require.NoError(t, err)
	t.Cleanup(ctx.Release)
	return ctx
}

func readyTestContext(t *testing.T, settings ContextSettings, opts ...SoftwareBackendOption) RenderContext {
	t.Helper()
	ctx := newTestContext(t, settings, opts...)
	require.NoError(t, ctx.CompleteInitialization())
	return ctx
}

func TestContextDefaults(t *testing.T) {
	ctx := newTestContext(t, ContextSettings{})

	settings := ctx.Settings()
	assert.Equal(t, common.PixelFormatBGRA8Unorm, settings.ColorFormat)
	assert.Equal(t, uint32(DefaultFrameBuffersCount), settings.FrameBuffersCount)
	assert.Equal(t, float64(1), settings.ClearDepth)
	assert.Equal(t, ContextStateCreated, ctx.State())
	assert.Equal(t, uint32(0), ctx.FrameIndex())
	assert.Equal(t, uint32(0), ctx.CurrentFrame().Index)
	assert.Equal(t, uint32(DefaultFrameBuffersCount), ctx.FrameBuffersCount())
}

func TestContextInitializationFlow(t *testing.T) {
	ctx := newTestContext(t, ContextSettings{})
	assert.False(t, ctx.ReadyToRender())

	buf, err := resource.NewBuffer("b", resource.BufferKindConstant, 64)
	require.NoError(t, err)
	require.NoError(t, ctx.InitBuffer(buf))
	assert.Equal(t, ContextStateInitializing, ctx.State())

	require.NoError(t, ctx.CompleteInitialization())
	assert.Equal(t, ContextStateReady, ctx.State())
	assert.True(t, ctx.ReadyToRender())
}

// Uploads issued before CompleteInitialization are deferred and flushed as one
// batch by the barrier, so the first frame pays no upload latency.
func TestContextDefersUploadsUntilInitializationCompletes(t *testing.T) {
	ctx := newTestContext(t, ContextSettings{})

	buf, err := resource.NewBuffer("b", resource.BufferKindConstant, 8)
	require.NoError(t, err)
	require.NoError(t, ctx.InitBuffer(buf))

	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	require.NoError(t, buf.SetData(payload))

	// Still staged: backend memory untouched.
	raw, err := ctx.ReadBuffer(buf)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, len(raw)), raw)

	require.NoError(t, ctx.CompleteInitialization())

	raw, err = ctx.ReadBuffer(buf)
	require.NoError(t, err)
	assert.Equal(t, payload, raw[:len(payload)])
}

// The deferred staging copies the caller's slice, so mutating it after SetData
// does not corrupt the upload.
func TestContextDeferredUploadCopiesData(t *testing.T) {
	ctx := newTestContext(t, ContextSettings{})

	buf, err := resource.NewBuffer("b", resource.BufferKindConstant, 4)
	require.NoError(t, err)
	require.NoError(t, ctx.InitBuffer(buf))

	payload := []byte{1, 2, 3, 4}
	require.NoError(t, buf.SetData(payload))
	payload[0] = 99

	require.NoError(t, ctx.CompleteInitialization())

	raw, err := ctx.ReadBuffer(buf)
	require.NoError(t, err)
	assert.Equal(t, byte(1), raw[0])
}

func TestBufferRoundTrip(t *testing.T) {
	ctx := readyTestContext(t, ContextSettings{})

	buf, err := resource.NewBuffer("b", resource.BufferKindConstant, 100)
	require.NoError(t, err)
	require.NoError(t, ctx.InitBuffer(buf))

	payload := make([]byte, 100)
	for i := range payload {
		payload[i] = byte(i)
	}
	require.NoError(t, buf.SetData(payload))

	raw, err := buf.GetData()
	require.NoError(t, err)

	// Declared bytes round-trip exactly; the tail is alignment padding.
	assert.Equal(t, int(buf.AlignedSize()), len(raw))
	assert.Equal(t, payload, raw[:100])
}

func TestTextureUploadStagedAtInit(t *testing.T) {
	ctx := newTestContext(t, ContextSettings{})

	img := common.ImageData{Width: 2, Height: 2, ChannelsCount: 4, Pixels: []byte{
		1, 2, 3, 4, 5, 6, 7, 8,
		9, 10, 11, 12, 13, 14, 15, 16,
	}}
	tex, err := resource.NewTexture("t", img)
	require.NoError(t, err)
	require.NoError(t, ctx.InitTexture(tex))
	require.NoError(t, ctx.CompleteInitialization())

	native, ok := tex.Native().(*softwareTexture)
	require.True(t, ok)
	native.mu.Lock()
	defer native.mu.Unlock()
	assert.Equal(t, img.Pixels, native.layers[[2]uint32{0, 0}])
}

func TestContextPresentAdvancesFrameRing(t *testing.T) {
	ctx := readyTestContext(t, ContextSettings{FrameBuffersCount: 3})

	assert.Equal(t, uint32(0), ctx.FrameIndex())
	require.NoError(t, ctx.Present())
	assert.Equal(t, uint32(1), ctx.FrameIndex())
	require.NoError(t, ctx.Present())
	assert.Equal(t, uint32(2), ctx.FrameIndex())
	require.NoError(t, ctx.Present())
	assert.Equal(t, uint32(0), ctx.FrameIndex())
}

func TestContextPresentRequiresReady(t *testing.T) {
	ctx := newTestContext(t, ContextSettings{})
	assert.ErrorIs(t, ctx.Present(), ErrContextNotReady)
}

// With a frame ring of N, the N+1th Present must block until the oldest
// frame's GPU work completes: CPU pipelining depth is bounded, not unbounded.
func TestContextPresentBoundsPipelineDepth(t *testing.T) {
	const delay = 150 * time.Millisecond
	ctx := readyTestContext(t, ContextSettings{FrameBuffersCount: 3}, WithExecutionDelay(delay))

	start := time.Now()
	require.NoError(t, ctx.Present())
	require.NoError(t, ctx.Present())
	require.NoError(t, ctx.Present())
	burst := time.Since(start)
	assert.Less(t, burst, delay, "first %d Presents must not block on the GPU", 3)

	// The 4th reuses slot 0 and must wait for its fence value.
	require.NoError(t, ctx.Present())
	total := time.Since(start)
	assert.GreaterOrEqual(t, total, delay, "4th Present must block until the oldest frame completed")
}

func TestContextWaitForGpuRenderComplete(t *testing.T) {
	ctx := readyTestContext(t, ContextSettings{}, WithExecutionDelay(30*time.Millisecond))

	require.NoError(t, ctx.Present())
	require.NoError(t, ctx.Present())

	ctx.WaitForGpu(WaitReasonRenderComplete)
	assert.Equal(t, ctx.Queue().Fence().LastValue(), ctx.Queue().Fence().CompletedValue())
}

func TestContextResize(t *testing.T) {
	ctx := readyTestContext(t, ContextSettings{FrameSize: common.FrameSize{Width: 64, Height: 64}})

	t.Run("zero size ignored", func(t *testing.T) {
		assert.False(t, ctx.Resize(common.FrameSize{}))
	})

	t.Run("unchanged size ignored", func(t *testing.T) {
		assert.False(t, ctx.Resize(common.FrameSize{Width: 64, Height: 64}))
	})

	t.Run("minimized ignored", func(t *testing.T) {
		ctx.SetMinimized(true)
		assert.False(t, ctx.Resize(common.FrameSize{Width: 128, Height: 128}))
		ctx.SetMinimized(false)
	})

	t.Run("new size applied", func(t *testing.T) {
		assert.True(t, ctx.Resize(common.FrameSize{Width: 128, Height: 128}))
		assert.Equal(t, common.FrameSize{Width: 128, Height: 128}, ctx.FrameSize())
		assert.Equal(t, ContextStateReady, ctx.State())
	})
}

func TestContextResizeRequiresReady(t *testing.T) {
	ctx := newTestContext(t, ContextSettings{FrameSize: common.FrameSize{Width: 64, Height: 64}})
	assert.False(t, ctx.Resize(common.FrameSize{Width: 128, Height: 128}))
}

func TestContextMinimizedBlocksRendering(t *testing.T) {
	ctx := readyTestContext(t, ContextSettings{})
	assert.True(t, ctx.ReadyToRender())

	ctx.SetMinimized(true)
	assert.False(t, ctx.ReadyToRender())

	ctx.SetMinimized(false)
	assert.True(t, ctx.ReadyToRender())
}

func TestContextReleaseIsIdempotent(t *testing.T) {
	ctx := readyTestContext(t, ContextSettings{})
	require.NoError(t, ctx.Present())

	ctx.Release()
	assert.Equal(t, ContextStateReleased, ctx.State())
	ctx.Release()
	assert.Equal(t, ContextStateReleased, ctx.State())
}

func TestQueueExecute(t *testing.T) {
	ctx := readyTestContext(t, ContextSettings{})

	vb, err := resource.NewBuffer("v", resource.BufferKindVertex, 96, resource.WithVertexStride(32))
	require.NoError(t, err)
	require.NoError(t, ctx.InitBuffer(vb))
	ib, err := resource.NewBuffer("i", resource.BufferKindIndex, 144)
	require.NoError(t, err)
	require.NoError(t, ctx.InitBuffer(ib))

	st := testRenderState(t)
	require.NoError(t, ctx.InitState(st))
	assert.NotNil(t, st.Native())
	assert.NotNil(t, st.Program().Native())

	cl := ctx.CurrentFrame().CommandList
	cl.Reset(st, "frame")
	cl.SetVertexBuffers(vb)
	cl.DrawIndexed(PrimitiveTypeTriangle, ib)
	cl.Commit(WithPresentTrigger())

	value, err := ctx.Queue().Execute(cl)
	require.NoError(t, err)
	assert.Equal(t, CommandListStateExecuted, cl.State())

	ctx.Queue().Fence().Wait(value)
	assert.GreaterOrEqual(t, ctx.Queue().Fence().CompletedValue(), value)
}

func TestQueueExecutePanicsOnUncommittedList(t *testing.T) {
	ctx := readyTestContext(t, ContextSettings{})

	cl := NewCommandList()
	assert.Panics(t, func() { _, _ = ctx.Queue().Execute(cl) })

	cl.Reset(testRenderState(t), "r")
	assert.Panics(t, func() { _, _ = ctx.Queue().Execute(cl) })
}
