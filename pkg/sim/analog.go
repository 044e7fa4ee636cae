package sim

import (
	"sync/atomic"
	"time"

	"github.com/chewxy/math32"
)

// Loopback is a DAC wired straight into an ADC channel.
type Loopback struct {
	refMV  uint32
	sample atomic.Uint32
	writes atomic.Uint64
}

// NewLoopback uses refMV as the full scale of both converters.
func NewLoopback(refMV uint32) *Loopback {
	return &Loopback{refMV: refMV}
}

// Write implements hal.DAC.
func (l *Loopback) Write(s uint8) error {
	l.sample.Store(uint32(s))
	l.writes.Add(1)
	return nil
}

// ReadMillivolts implements hal.ADC.
func (l *Loopback) ReadMillivolts() (uint16, error) {
	return uint16(l.sample.Load() * l.refMV / 255), nil
}

// Sample returns the last DAC sample.
func (l *Loopback) Sample() uint8 { return uint8(l.sample.Load()) }

// Writes is the number of DAC writes.
func (l *Loopback) Writes() uint64 { return l.writes.Load() }

// SineADC reads a sine wave centred at half of refMV.
type SineADC struct {
	refMV  float32
	period time.Duration
	start  time.Time
	now    func() time.Time
}

// NewSineADC returns an ADC that swings 0..refMV once per period.
func NewSineADC(refMV uint16, period time.Duration) *SineADC {
	return &SineADC{refMV: float32(refMV), period: period, start: time.Now(), now: time.Now}
}

// ReadMillivolts implements hal.ADC.
func (a *SineADC) ReadMillivolts() (uint16, error) {
	if a.period <= 0 {
		return uint16(a.refMV / 2), nil
	}
	t := float32(a.now().Sub(a.start).Seconds())
	v := a.refMV / 2 * (1 + math32.Sin(2*math32.Pi*t/float32(a.period.Seconds())))
	return uint16(math32.Round(v)), nil
}
