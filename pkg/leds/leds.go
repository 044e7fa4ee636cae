// Package leds drives a small bank of indicator LEDs and maps readings onto
// them through cumulative threshold bands.
package leds

import (
	"errors"
	"fmt"
	"sync"

	"github.com/itohio/esplab/pkg/hal"
	"periph.io/x/conn/v3/gpio"
)

var (
	// ErrNoLED is returned for an LED index outside the bank.
	ErrNoLED = errors.New("no such led")
	// ErrBands is returned by Bands.Validate.
	ErrBands = errors.New("invalid threshold bands")
)

// Bank is a set of LEDs addressed by index, starting at 0 for LED1.
type Bank struct {
	mu    sync.Mutex
	lines []hal.Line
	state []bool
}

// NewBank wraps lines; all LEDs are assumed off.
func NewBank(lines ...hal.Line) *Bank {
	return &Bank{
		lines: append([]hal.Line(nil), lines...),
		state: make([]bool, len(lines)),
	}
}

// Len returns the number of LEDs.
func (b *Bank) Len() int { return len(b.lines) }

// On lights LED i.
func (b *Bank) On(i int) error { return b.set(i, true) }

// Off turns LED i off.
func (b *Bank) Off(i int) error { return b.set(i, false) }

// Toggle inverts LED i.
func (b *Bank) Toggle(i int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 || i >= len(b.lines) {
		return fmt.Errorf("%w: %d", ErrNoLED, i)
	}
	return b.setLocked(i, !b.state[i])
}

// OffAll turns every LED off.
func (b *Bank) OffAll() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.lines {
		if err := b.setLocked(i, false); err != nil {
			return err
		}
	}
	return nil
}

// State reports whether LED i is lit. Out of range indexes read as off.
func (b *Bank) State(i int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 || i >= len(b.state) {
		return false
	}
	return b.state[i]
}

// States returns a copy of all LED states.
func (b *Bank) States() []bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]bool(nil), b.state...)
}

func (b *Bank) set(i int, on bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 || i >= len(b.lines) {
		return fmt.Errorf("%w: %d", ErrNoLED, i)
	}
	return b.setLocked(i, on)
}

func (b *Bank) setLocked(i int, on bool) error {
	if err := b.lines[i].Out(gpio.Level(on)); err != nil {
		return fmt.Errorf("led %d: %w", i+1, err)
	}
	b.state[i] = on
	return nil
}

// Bands are ascending lower bounds. A reading at or above Bands[i] lights
// LEDs 0..i; below Bands[0] nothing is lit. The top band is unbounded.
type Bands []uint16

// DefaultBands are the 10/20/30 thresholds of the distance exercises.
var DefaultBands = Bands{10, 20, 30}

// Validate checks the bands are non-empty and strictly ascending.
func (b Bands) Validate() error {
	if len(b) == 0 {
		return fmt.Errorf("%w: empty", ErrBands)
	}
	for i := 1; i < len(b); i++ {
		if b[i] <= b[i-1] {
			return fmt.Errorf("%w: %d does not follow %d", ErrBands, b[i], b[i-1])
		}
	}
	return nil
}

// Lit returns how many LEDs a reading lights.
func (b Bands) Lit(reading uint16) int {
	n := 0
	for _, lower := range b {
		if reading < lower {
			break
		}
		n++
	}
	return n
}

// Apply clears the bank and lights the LEDs for reading.
func (b Bands) Apply(bank *Bank, reading uint16) error {
	if err := bank.OffAll(); err != nil {
		return err
	}
	n := b.Lit(reading)
	if n > bank.Len() {
		n = bank.Len()
	}
	for i := 0; i < n; i++ {
		if err := bank.On(i); err != nil {
			return err
		}
	}
	return nil
}
