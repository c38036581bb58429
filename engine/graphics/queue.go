package graphics

import (
	"fmt"
)

// CommandQueue submits committed command lists for GPU execution. Submission
// is asynchronous: Execute returns as soon as the work is handed to the
// backend, and completion is observed through the context fence.
type CommandQueue struct {
	label   string
	fence   *Fence
	backend ContextBackend
}

func newCommandQueue(label string, fence *Fence, backend ContextBackend) *CommandQueue {
	return &CommandQueue{label: label, fence: fence, backend: backend}
}

// Label returns the queue's debug label.
func (q *CommandQueue) Label() string {
	return q.label
}

// Fence returns the completion fence this queue signals.
func (q *CommandQueue) Fence() *Fence {
	return q.fence
}

// Execute submits command lists for GPU execution in the array order given.
// Lists submitted by separate Execute calls on the same queue run in
// submission order; no concurrency between them. Every list must be
// Committed; anything else is a recording-order defect and panics.
//
// Execute does not block. The returned fence value is signaled when the
// submitted work completes on the GPU.
//
// Parameters:
//   - lists: the committed command lists to execute, in order
//
// Returns:
//   - uint64: the fence value marking completion of this submission
//   - error: an error if the backend rejects the submission
func (q *CommandQueue) Execute(lists ...CommandList) (uint64, error) {
	for _, list := range lists {
		if list.State() != CommandListStateCommitted {
			panic(fmt.Sprintf("queue %q: Execute of command list %q in state %s, requires Committed", q.label, list.Label(), list.State()))
		}
	}

	value := q.fence.NextValue()
	if err := q.backend.Execute(lists, q.fence, value); err != nil {
		return 0, fmt.Errorf("queue %q: execute: %w", q.label, err)
	}
	for _, list := range lists {
		list.(*commandList).markExecuted()
	}
	return value, nil
}
