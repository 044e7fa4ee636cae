// Package timer provides a periodic timer whose expiry callback plays the
// role of a hardware timer interrupt.
package timer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrPeriod is returned for non-positive periods.
var ErrPeriod = errors.New("timer period must be positive")

// Timer calls fn every period once started. fn runs on the timer goroutine
// and must return quickly.
type Timer struct {
	fn func()

	mu      sync.Mutex
	period  time.Duration
	ticker  *time.Ticker
	cancel  context.CancelFunc
	stopped chan struct{}
}

// New creates a stopped timer.
func New(period time.Duration, fn func()) (*Timer, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrPeriod, period)
	}
	return &Timer{fn: fn, period: period}, nil
}

// FromHz converts a sampling rate to a timer period.
func FromHz(hz uint32) time.Duration {
	if hz == 0 {
		return 0
	}
	return time.Duration(1_000_000/hz) * time.Microsecond
}

// Start runs the timer until ctx is done or Stop is called. Starting a
// running timer is a no-op.
func (t *Timer) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ticker != nil {
		return
	}

	ctx, t.cancel = context.WithCancel(ctx)
	t.ticker = time.NewTicker(t.period)
	t.stopped = make(chan struct{})

	go func(ticker *time.Ticker, cancel context.CancelFunc, stopped chan struct{}) {
		defer close(stopped)
		defer ticker.Stop()
		defer t.release(stopped)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.fn()
			}
		}
	}(t.ticker, t.cancel, t.stopped)
}

// release forgets the run owning stopped, unless Stop or a newer Start
// already replaced it.
func (t *Timer) release(stopped chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped == stopped {
		t.ticker, t.cancel, t.stopped = nil, nil, nil
	}
}

// Stop halts the timer and waits for the timer goroutine to exit.
func (t *Timer) Stop() {
	t.mu.Lock()
	cancel, stopped := t.cancel, t.stopped
	t.ticker, t.cancel, t.stopped = nil, nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-stopped
}

// Running reports whether the timer is started.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ticker != nil
}

// Period returns the current period.
func (t *Timer) Period() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.period
}

// UpdatePeriod changes the period. A running timer restarts its current
// interval with the new period.
func (t *Timer) UpdatePeriod(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: %v", ErrPeriod, d)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.period = d
	if t.ticker != nil {
		t.ticker.Reset(d)
	}
	return nil
}
