// Package sim is a software board for running the exercises without
// hardware: periph.io test pins, a latched BCD display, a simulated
// ultrasonic sensor and an ADC/DAC loopback.
package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/itohio/esplab/pkg/bcd"
	"github.com/itohio/esplab/pkg/hal"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// NewPins returns n test pins named prefix1..prefixN.
func NewPins(prefix string, n int) []*gpiotest.Pin {
	pins := make([]*gpiotest.Pin, n)
	for i := range pins {
		pins[i] = &gpiotest.Pin{N: fmt.Sprintf("%s%d", prefix, i+1), Num: i + 1}
	}
	return pins
}

// Levels reads pins as booleans.
func Levels(pins []*gpiotest.Pin) []bool {
	out := make([]bool, len(pins))
	for i, p := range pins {
		out[i] = p.Read() == gpio.High
	}
	return out
}

// LatchedDisplay is a BCD display whose digit positions latch the code
// lines when their enable goes high, like a CD4543 decoder per digit.
type LatchedDisplay struct {
	*bcd.Display

	code []*gpiotest.Pin

	// writeMu keeps concurrent writers from mixing digits on the code lines.
	writeMu sync.Mutex

	mu     sync.Mutex
	shown  []uint8
	writes uint64
}

// NewLatchedDisplay builds an n digit latched display.
func NewLatchedDisplay(n int, hold time.Duration) (*LatchedDisplay, error) {
	if n < 1 || n > bcd.MaxDigits {
		return nil, fmt.Errorf("%w: %d digits, want 1..%d", bcd.ErrPinMap, n, bcd.MaxDigits)
	}
	d := &LatchedDisplay{
		code:  NewPins("BCD", bcd.Bits),
		shown: make([]uint8, n),
	}
	enable := make([]hal.Line, n)
	for i := range enable {
		enable[i] = hal.LineFunc(func(l gpio.Level) error {
			if l == gpio.High {
				d.latch(i)
			}
			return nil
		})
	}
	disp, err := bcd.NewDisplay(hal.Lines(d.code...), enable, hold)
	if err != nil {
		return nil, err
	}
	d.Display = disp
	return d, nil
}

func (d *LatchedDisplay) latch(i int) {
	var v uint8
	for bit, p := range d.code {
		if p.Read() == gpio.High {
			v |= 1 << bit
		}
	}
	d.mu.Lock()
	d.shown[i] = v
	d.mu.Unlock()
}

// Write renders value and counts the write. It implements hal.LCD.
func (d *LatchedDisplay) Write(value uint16) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	if err := d.Display.Write(value); err != nil {
		return err
	}
	d.mu.Lock()
	d.writes++
	d.mu.Unlock()
	return nil
}

// Shown returns the latched digits, most significant first.
func (d *LatchedDisplay) Shown() []uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]uint8(nil), d.shown...)
}

// Value returns the latched digits as a number.
func (d *LatchedDisplay) Value() uint32 {
	var v uint32
	for _, digit := range d.Shown() {
		v = v*10 + uint32(digit)
	}
	return v
}

// Writes is the number of completed writes.
func (d *LatchedDisplay) Writes() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writes
}
