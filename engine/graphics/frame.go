package graphics

// Frame is one ring slot of the frames-in-flight cycle. It owns the command
// list recorded for that slot and remembers the fence value of the slot's
// last submission, which gates CPU reuse of the slot's resources.
type Frame struct {
	// Index is the fixed ring slot index of this frame.
	Index uint32

	// CommandList is the render command list recorded for this slot.
	CommandList CommandList

	// fenceValue is the fence value signaled when this slot's last submitted
	// GPU work (including presentation) completes. Zero means the slot was
	// never submitted and is free immediately.
	fenceValue uint64
}

// FenceValue returns the fence value gating reuse of this slot's resources.
// Intended for tests and diagnostics.
func (f *Frame) FenceValue() uint64 {
	return f.fenceValue
}
