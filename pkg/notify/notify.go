// Package notify hands work from interrupt callbacks to a single waiting
// task through a one-slot wake signal.
package notify

import (
	"context"
	"log"
	"sync/atomic"
)

// Notification is a binary wake signal with a single pending slot. Gives
// that arrive while a wake is already pending are coalesced and counted.
type Notification struct {
	ch      chan struct{}
	given   atomic.Uint32
	dropped atomic.Uint32
}

// New returns an empty notification.
func New() *Notification {
	return &Notification{ch: make(chan struct{}, 1)}
}

// Give marks work as due. It never blocks and is safe to call from
// interrupt context. It reports false if the wake was coalesced into one
// already pending.
func (n *Notification) Give() bool {
	select {
	case n.ch <- struct{}{}:
		n.given.Add(1)
		return true
	default:
		n.dropped.Add(1)
		return false
	}
}

// Take blocks until a wake is pending and consumes it.
func (n *Notification) Take(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-n.ch:
		return nil
	}
}

// Pending reports whether a wake is waiting to be taken.
func (n *Notification) Pending() bool { return len(n.ch) > 0 }

// Given is the number of gives that produced a wake.
func (n *Notification) Given() uint32 { return n.given.Load() }

// Dropped is the number of gives lost to coalescing.
func (n *Notification) Dropped() uint32 { return n.dropped.Load() }

// State is the scheduling state of a Task.
type State uint32

const (
	// Waiting is blocked on the wake notification.
	Waiting State = iota
	// Running is executing one work unit.
	Running
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// Work is one unit of work. It runs to completion and must not wait on
// another notification.
type Work func(ctx context.Context) error

// Task runs Work once per wake.
type Task struct {
	name  string
	note  *Notification
	work  Work
	state atomic.Uint32
	runs  atomic.Uint64
}

// NewTask creates a task in the Waiting state.
func NewTask(name string, work Work) *Task {
	return &Task{name: name, note: New(), work: work}
}

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// Notify wakes the task. It is the interrupt-side entry point.
func (t *Task) Notify() bool { return t.note.Give() }

// Notification exposes the task's wake signal.
func (t *Task) Notification() *Notification { return t.note }

// State returns the current state.
func (t *Task) State() State { return State(t.state.Load()) }

// Runs is the number of completed work units.
func (t *Task) Runs() uint64 { return t.runs.Load() }

// Run loops until ctx is cancelled. Work errors are logged and the loop
// carries on waiting.
func (t *Task) Run(ctx context.Context) error {
	for {
		if err := t.note.Take(ctx); err != nil {
			return err
		}
		t.state.Store(uint32(Running))
		if err := t.work(ctx); err != nil {
			log.Printf("%s: %v", t.name, err)
		}
		t.runs.Add(1)
		t.state.Store(uint32(Waiting))
	}
}
