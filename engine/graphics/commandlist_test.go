package graphics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basalt3d/basalt/common"
	"github.com/basalt3d/basalt/engine/graphics/program"
	"github.com/basalt3d/basalt/engine/graphics/resource"
	"github.com/basalt3d/basalt/engine/graphics/state"
)

func testRenderState(t *testing.T) state.RenderState {
	t.Helper()
	prog, err := program.New("test", program.Settings{
		Shaders: map[program.ShaderType]program.ShaderSettings{
			program.ShaderTypeVertex: {EntryPoint: "vs_main", Source: "// vs"},
		},
	})
	require.NoError(t, err)

	size := common.FrameSize{Width: 64, Height: 64}
	st, err := state.New("test", state.Settings{
		Program:      prog,
		Viewports:    []state.Viewport{state.NewViewport(size)},
		ScissorRects: []state.ScissorRect{state.NewScissorRect(size)},
	})
	require.NoError(t, err)
	return st
}

func testVertexBuffer(t *testing.T) resource.Buffer {
	t.Helper()
	b, err := resource.NewBuffer("vertices", resource.BufferKindVertex, 96, resource.WithVertexStride(32))
	require.NoError(t, err)
	return b
}

func testIndexBuffer(t *testing.T) resource.Buffer {
	t.Helper()
	b, err := resource.NewBuffer("indices", resource.BufferKindIndex, 144)
	require.NoError(t, err)
	return b
}

func TestCommandListLifecycle(t *testing.T) {
	cl := NewCommandList()
	assert.Equal(t, CommandListStateUninitialized, cl.State())

	cl.Reset(testRenderState(t), "first")
	assert.Equal(t, CommandListStateRecording, cl.State())
	assert.Equal(t, "first", cl.Label())

	cl.SetVertexBuffers(testVertexBuffer(t))
	cl.DrawIndexed(PrimitiveTypeTriangle, testIndexBuffer(t))
	cl.Commit()
	assert.Equal(t, CommandListStateCommitted, cl.State())

	commands := cl.Commands()
	require.Len(t, commands, 2)
	assert.Equal(t, CommandKindSetVertexBuffers, commands[0].Kind)
	assert.Equal(t, CommandKindDrawIndexed, commands[1].Kind)
	assert.Equal(t, uint32(36), commands[1].IndexCount)
}

// Out-of-order command list calls are programming defects and panic rather
// than returning errors.
func TestCommandListOrderingPanics(t *testing.T) {
	t.Run("record before Reset", func(t *testing.T) {
		cl := NewCommandList()
		assert.Panics(t, func() { cl.SetVertexBuffers(testVertexBuffer(t)) })
		assert.Panics(t, func() { cl.DrawIndexed(PrimitiveTypeTriangle, testIndexBuffer(t)) })
		assert.Panics(t, func() { cl.Commit() })
	})

	t.Run("record after Commit", func(t *testing.T) {
		cl := NewCommandList()
		cl.Reset(testRenderState(t), "r")
		cl.Commit()
		assert.Panics(t, func() { cl.DrawIndexed(PrimitiveTypeTriangle, testIndexBuffer(t)) })
	})

	t.Run("double Commit", func(t *testing.T) {
		cl := NewCommandList()
		cl.Reset(testRenderState(t), "r")
		cl.Commit()
		assert.Panics(t, func() { cl.Commit() })
	})

	t.Run("Reset while Committed", func(t *testing.T) {
		cl := NewCommandList()
		st := testRenderState(t)
		cl.Reset(st, "r")
		cl.Commit()
		assert.Panics(t, func() { cl.Reset(st, "again") })
	})

	t.Run("Discard outside Committed", func(t *testing.T) {
		cl := NewCommandList()
		assert.Panics(t, func() { cl.Discard() })
		cl.Reset(testRenderState(t), "r")
		assert.Panics(t, func() { cl.Discard() })
	})
}

func TestCommandListBufferKindChecks(t *testing.T) {
	cl := NewCommandList()
	cl.Reset(testRenderState(t), "r")

	assert.Panics(t, func() { cl.SetVertexBuffers(testIndexBuffer(t)) })
	assert.Panics(t, func() { cl.DrawIndexed(PrimitiveTypeTriangle, testVertexBuffer(t)) })
}

func TestCommandListDiscardAllowsNewRecording(t *testing.T) {
	cl := NewCommandList()
	st := testRenderState(t)

	cl.Reset(st, "r")
	cl.SetVertexBuffers(testVertexBuffer(t))
	cl.Commit()

	cl.Discard()
	assert.Equal(t, CommandListStateExecuted, cl.State())
	assert.Empty(t, cl.Commands())

	cl.Reset(st, "again")
	assert.Equal(t, CommandListStateRecording, cl.State())
}

func TestCommandListRetainsAndReleasesResources(t *testing.T) {
	cl := NewCommandList()
	vb := testVertexBuffer(t)
	refCounter := vb.(interface{ RefCount() int32 })

	cl.Reset(testRenderState(t), "r")
	cl.SetVertexBuffers(vb)
	assert.Equal(t, int32(2), refCounter.RefCount())

	cl.Commit()
	cl.Discard()
	assert.Equal(t, int32(1), refCounter.RefCount())
}

func TestCommandListPresentTrigger(t *testing.T) {
	cl := NewCommandList()
	cl.Reset(testRenderState(t), "r")
	cl.Commit(WithPresentTrigger())
	assert.True(t, cl.IsPresentTrigger())

	// The flag does not leak into the next recording.
	cl.Discard()
	cl.Reset(testRenderState(t), "again")
	cl.Commit()
	assert.False(t, cl.IsPresentTrigger())
}
