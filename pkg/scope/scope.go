// Package scope is a fyne widget that plots the distance trace with the
// LED band thresholds drawn across it.
package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/esplab/pkg/leds"
	"github.com/itohio/esplab/pkg/sample"
)

// DefaultMaxPoints limits the points drawn per refresh.
const DefaultMaxPoints = 500

// Trace displays a window of samples.
type Trace struct {
	widget.BaseWidget

	// Data (protected by mu)
	mu      sync.RWMutex
	display []sample.Sample
	bands   leds.Bands
	peak    *sample.Sample
	unit    string
	window  time.Duration
	scale   Scale

	maxPoints int
}

// New creates a trace showing window worth of samples.
func New(window time.Duration, maxPoints int, bands leds.Bands) *Trace {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	t := &Trace{
		display:   make([]sample.Sample, 0, maxPoints),
		bands:     append(leds.Bands(nil), bands...),
		unit:      "cm",
		window:    window,
		maxPoints: maxPoints,
	}
	t.scale = AutoScale(nil, t.bands, window, time.Now())
	t.ExtendBaseWidget(t)
	return t
}

// Update redraws the trace from h. Call it on the fyne goroutine, e.g.
// through fyne.Do.
func (t *Trace) Update(h *sample.History) {
	t.mu.Lock()
	t.display = h.Snapshot(t.display, t.maxPoints)
	if p, ok := h.Peak(); ok {
		t.peak = &p
	} else {
		t.peak = nil
	}
	if len(t.display) > 0 && t.display[len(t.display)-1].Unit != "" {
		t.unit = t.display[len(t.display)-1].Unit
	}
	t.scale = AutoScale(t.display, t.bands, t.window, time.Now())
	t.mu.Unlock()

	t.Refresh()
}

// SetBands replaces the threshold lines.
func (t *Trace) SetBands(bands leds.Bands) {
	t.mu.Lock()
	t.bands = append(leds.Bands(nil), bands...)
	t.mu.Unlock()
	t.Refresh()
}

// MaxPoints returns the decimation limit.
func (t *Trace) MaxPoints() int { return t.maxPoints }

// CreateRenderer creates the widget renderer.
func (t *Trace) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255})
	return &traceRenderer{
		trace:   t,
		bg:      bg,
		objects: []fyne.CanvasObject{bg},
	}
}

// Scale maps samples into the plot area.
type Scale struct {
	YMin, YMax float64
	XMin, XMax time.Time
}

// AutoScale fits the samples and the band thresholds with a 10% margin.
// The time axis spans at least window and ends at the newest sample, or at
// now when there are none.
func AutoScale(samples []sample.Sample, bands leds.Bands, window time.Duration, now time.Time) Scale {
	s := Scale{YMin: 0, YMax: 1}
	have := false
	extend := func(v float64) {
		if !have {
			s.YMin, s.YMax = v, v
			have = true
			return
		}
		s.YMin = min(s.YMin, v)
		s.YMax = max(s.YMax, v)
	}
	for _, smp := range samples {
		extend(smp.Value)
	}
	for _, b := range bands {
		extend(float64(b))
	}
	if s.YMin > 0 {
		s.YMin = 0
	}

	span := s.YMax - s.YMin
	if span == 0 {
		span = 1
	}
	s.YMax += span * 0.1

	s.XMax = now
	if len(samples) > 0 {
		s.XMax = samples[len(samples)-1].Timestamp
	}
	s.XMin = s.XMax.Add(-window)
	if len(samples) > 0 && samples[0].Timestamp.Before(s.XMin) {
		s.XMin = samples[0].Timestamp
	}
	if !s.XMax.After(s.XMin) {
		s.XMin = s.XMax.Add(-time.Second)
	}
	return s
}

// X maps a timestamp to the [0,1] range of the time axis.
func (s Scale) X(ts time.Time) float32 {
	return float32(ts.Sub(s.XMin).Seconds() / s.XMax.Sub(s.XMin).Seconds())
}

// Y maps a value to the [0,1] range of the value axis, 0 at the bottom.
func (s Scale) Y(v float64) float32 {
	return float32((v - s.YMin) / (s.YMax - s.YMin))
}
