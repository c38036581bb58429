package graphics

import "sync"

// Fence is a monotonically increasing completion counter shared between the
// CPU and one GPU queue. The CPU reserves values with NextValue and blocks in
// Wait; the backend signals values from its completion path. Signaled values
// only move forward, so waiting on an already-passed value returns
// immediately.
type Fence struct {
	mu   sync.Mutex
	cond *sync.Cond

	completed uint64
	next      uint64

	// waiter, when set, is invoked inside Wait while the target value is
	// still unreached. Backends without an asynchronous completion thread
	// (e.g., ones that only learn about completion by polling the native API)
	// install one to drive progress; it must eventually lead to Signal.
	waiter func(value uint64)
}

// NewFence creates a fence with no work signaled yet.
func NewFence() *Fence {
	f := &Fence{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// NextValue reserves and returns the next fence value to signal. Values start
// at 1 so the zero value always reads as already completed.
func (f *Fence) NextValue() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return f.next
}

// LastValue returns the most recently reserved fence value, or zero if no
// value was ever reserved. Waiting on it waits for all submitted work.
func (f *Fence) LastValue() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.next
}

// CompletedValue returns the highest signaled value.
func (f *Fence) CompletedValue() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

// Signal marks the given value as reached and wakes all waiters. Values never
// move backwards.
//
// Parameters:
//   - value: the completed fence value
func (f *Fence) Signal(value uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if value > f.completed {
		f.completed = value
	}
	f.cond.Broadcast()
}

// Wait blocks the calling goroutine until the fence reaches the given value.
// This is deliberate backpressure: the render loop's pipelining depth bound
// depends on this call blocking, so it must not be turned into a poll.
//
// Parameters:
//   - value: the fence value to wait for
func (f *Fence) Wait(value uint64) {
	f.mu.Lock()
	for f.completed < value {
		if f.waiter != nil {
			waiter := f.waiter
			f.mu.Unlock()
			waiter(value)
			f.mu.Lock()
			continue
		}
		f.cond.Wait()
	}
	f.mu.Unlock()
}

// SetWaiter installs the backend progress hook used by Wait. Called by
// backends during context creation, not by user code.
func (f *Fence) SetWaiter(waiter func(value uint64)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waiter = waiter
}
