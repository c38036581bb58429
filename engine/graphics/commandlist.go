package graphics

import (
	"fmt"

	"github.com/basalt3d/basalt/engine/graphics/bindings"
	"github.com/basalt3d/basalt/engine/graphics/resource"
	"github.com/basalt3d/basalt/engine/graphics/state"
)

// CommandListState tracks a command list through its recording lifecycle.
type CommandListState int

const (
	// CommandListStateUninitialized is the state before the first Reset.
	CommandListStateUninitialized CommandListState = iota

	// CommandListStateRecording accepts binding and draw calls.
	CommandListStateRecording

	// CommandListStateCommitted is finalized and awaiting queue execution.
	CommandListStateCommitted

	// CommandListStateExecuted has been submitted; Reset starts a new recording.
	CommandListStateExecuted
)

// String returns the state name for debug labels and panic messages.
func (s CommandListState) String() string {
	switch s {
	case CommandListStateUninitialized:
		return "Uninitialized"
	case CommandListStateRecording:
		return "Recording"
	case CommandListStateCommitted:
		return "Committed"
	case CommandListStateExecuted:
		return "Executed"
	default:
		return "Unknown"
	}
}

// PrimitiveType selects the primitive topology of a draw.
type PrimitiveType int

const (
	// PrimitiveTypeTriangle draws triangle lists (default).
	PrimitiveTypeTriangle PrimitiveType = iota

	// PrimitiveTypeLine draws line lists.
	PrimitiveTypeLine
)

// CommandKind identifies one recorded command.
type CommandKind int

const (
	// CommandKindSetBindings binds a program binding set.
	CommandKindSetBindings CommandKind = iota

	// CommandKindSetVertexBuffers binds vertex buffers.
	CommandKindSetVertexBuffers

	// CommandKindDrawIndexed issues an indexed draw.
	CommandKindDrawIndexed
)

// Command is one recorded operation, replayed by the backend at execution.
type Command struct {
	Kind          CommandKind
	Bindings      bindings.ProgramBindings
	VertexBuffers []resource.Buffer
	IndexBuffer   resource.Buffer
	Primitive     PrimitiveType
	IndexCount    uint32
}

// commandList is the implementation of the CommandList interface.
type commandList struct {
	label       string
	listState   CommandListState
	renderState state.RenderState
	commands    []Command

	// retained are the resources referenced by the current recording; held
	// until the next Reset so the GPU never reads freed memory.
	retained []resource.Resource

	// presentTrigger marks the list whose completion gates presentation.
	presentTrigger bool
}

// CommandList records GPU work for one frame-in-flight slot and one queue
// purpose. Recording is a single-threaded API; calling any method out of
// state-machine order is a programming defect and panics rather than
// returning an error.
type CommandList interface {
	// Label returns the debug label set by the last Reset.
	Label() string

	// State returns the current lifecycle state.
	State() CommandListState

	// RenderState returns the pipeline state targeted by the current recording.
	RenderState() state.RenderState

	// Commands returns the recorded commands in order. Consumed by the
	// backend during execution.
	Commands() []Command

	// IsPresentTrigger reports whether this list's completion gates
	// presentation of the frame.
	IsPresentTrigger() bool

	// Reset begins a new recording against a render state, discarding the
	// previous recording and releasing the resources it retained. Panics if
	// the list is Committed but not yet executed: that recording must be
	// executed or explicitly discarded first.
	//
	// Parameters:
	//   - renderState: the pipeline state the recording targets
	//   - label: debug label for this recording
	Reset(renderState state.RenderState, label string)

	// SetProgramBindings binds a program binding set for subsequent draws.
	// Panics unless the list is Recording.
	SetProgramBindings(b bindings.ProgramBindings)

	// SetVertexBuffers binds the vertex buffers for subsequent draws. Panics
	// unless the list is Recording, or if a buffer is not a vertex buffer.
	SetVertexBuffers(buffers ...resource.Buffer)

	// DrawIndexed records an indexed draw using every index of the given
	// index buffer. Panics unless the list is Recording, or if the buffer is
	// not an index buffer.
	//
	// Parameters:
	//   - primitive: the primitive topology
	//   - indexBuffer: the index buffer driving the draw
	DrawIndexed(primitive PrimitiveType, indexBuffer resource.Buffer)

	// Commit finalizes the recording, making the list ready for queue
	// execution. Panics unless the list is Recording.
	//
	// Parameters:
	//   - opts: a variadic list of CommitOption functions
	Commit(opts ...CommitOption)

	// Discard abandons a committed recording without executing it, releasing
	// the retained resources. Panics unless the list is Committed.
	Discard()

	// Release drops the resources retained by the current recording. The
	// list must not be used afterwards.
	Release()
}

var _ CommandList = &commandList{}

// NewCommandList creates a command list in the Uninitialized state. The first
// Reset starts its first recording.
func NewCommandList() CommandList {
	return &commandList{}
}

func (c *commandList) Label() string {
	return c.label
}

func (c *commandList) State() CommandListState {
	return c.listState
}

func (c *commandList) RenderState() state.RenderState {
	return c.renderState
}

func (c *commandList) Commands() []Command {
	return c.commands
}

func (c *commandList) IsPresentTrigger() bool {
	return c.presentTrigger
}

func (c *commandList) Reset(renderState state.RenderState, label string) {
	if c.listState == CommandListStateCommitted {
		panic(fmt.Sprintf("command list %q: Reset while Committed; execute or discard the pending recording first", c.label))
	}
	if renderState == nil {
		panic(fmt.Sprintf("command list %q: Reset requires a render state", label))
	}
	c.releaseRetained()
	c.label = label
	c.renderState = renderState
	c.commands = c.commands[:0]
	c.presentTrigger = false
	c.listState = CommandListStateRecording
}

func (c *commandList) SetProgramBindings(b bindings.ProgramBindings) {
	c.requireRecording("SetProgramBindings")
	c.commands = append(c.commands, Command{Kind: CommandKindSetBindings, Bindings: b})
}

func (c *commandList) SetVertexBuffers(buffers ...resource.Buffer) {
	c.requireRecording("SetVertexBuffers")
	for _, buf := range buffers {
		if buf.Kind() != resource.BufferKindVertex {
			panic(fmt.Sprintf("command list %q: SetVertexBuffers given a %s buffer", c.label, buf.Kind()))
		}
		c.retain(buf)
	}
	c.commands = append(c.commands, Command{Kind: CommandKindSetVertexBuffers, VertexBuffers: buffers})
}

func (c *commandList) DrawIndexed(primitive PrimitiveType, indexBuffer resource.Buffer) {
	c.requireRecording("DrawIndexed")
	if indexBuffer.Kind() != resource.BufferKindIndex {
		panic(fmt.Sprintf("command list %q: DrawIndexed given a %s buffer", c.label, indexBuffer.Kind()))
	}
	c.retain(indexBuffer)
	c.commands = append(c.commands, Command{
		Kind:        CommandKindDrawIndexed,
		IndexBuffer: indexBuffer,
		Primitive:   primitive,
		IndexCount:  indexBuffer.ElementCount(),
	})
}

func (c *commandList) Commit(opts ...CommitOption) {
	c.requireRecording("Commit")
	var cfg commitConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	c.presentTrigger = cfg.presentTrigger
	c.listState = CommandListStateCommitted
}

func (c *commandList) Discard() {
	if c.listState != CommandListStateCommitted {
		panic(fmt.Sprintf("command list %q: Discard in state %s, requires Committed", c.label, c.listState))
	}
	c.releaseRetained()
	c.commands = c.commands[:0]
	c.listState = CommandListStateExecuted
}

func (c *commandList) Release() {
	c.releaseRetained()
	c.commands = nil
	c.renderState = nil
}

// markExecuted transitions the list out of Committed after queue submission.
func (c *commandList) markExecuted() {
	c.listState = CommandListStateExecuted
}

func (c *commandList) requireRecording(op string) {
	if c.listState != CommandListStateRecording {
		panic(fmt.Sprintf("command list %q: %s in state %s, requires Recording", c.label, op, c.listState))
	}
}

func (c *commandList) retain(res resource.Resource) {
	res.AddRef()
	c.retained = append(c.retained, res)
}

func (c *commandList) releaseRetained() {
	for _, res := range c.retained {
		res.Release()
	}
	c.retained = c.retained[:0]
}
