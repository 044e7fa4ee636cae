package sample

import (
	"sync"
	"time"
)

// History keeps the samples of a sliding time window. Max replies are not
// part of the series and are kept aside as the last peak.
type History struct {
	mu      sync.RWMutex
	window  time.Duration
	samples []Sample
	peak    *Sample
}

// NewHistory keeps samples no older than window.
func NewHistory(window time.Duration) *History {
	return &History{window: window}
}

// Add appends s and drops samples that fell out of the window.
func (h *History) Add(s Sample) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s.Max {
		h.peak = &s
		return
	}
	h.samples = append(h.samples, s)
	h.pruneLocked(s.Timestamp)
}

func (h *History) pruneLocked(now time.Time) {
	if h.window <= 0 {
		return
	}
	cut := now.Add(-h.window)
	i := 0
	for i < len(h.samples) && h.samples[i].Timestamp.Before(cut) {
		i++
	}
	if i > 0 {
		h.samples = append(h.samples[:0], h.samples[i:]...)
	}
}

// SetWindow changes the window. Shrinking it prunes on the next Add.
func (h *History) SetWindow(window time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.window = window
}

// Window returns the window.
func (h *History) Window() time.Duration {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.window
}

// Len returns the number of samples held.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.samples)
}

// Last returns the newest sample.
func (h *History) Last() (Sample, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.samples) == 0 {
		return Sample{}, false
	}
	return h.samples[len(h.samples)-1], true
}

// Peak returns the last max reply.
func (h *History) Peak() (Sample, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.peak == nil {
		return Sample{}, false
	}
	return *h.peak, true
}

// Snapshot copies the series into dst, decimated to maxPoints.
func (h *History) Snapshot(dst []Sample, maxPoints int) []Sample {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return DownsampleSamples(dst, h.samples, maxPoints)
}

// Clear drops everything.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples = h.samples[:0]
	h.peak = nil
}
