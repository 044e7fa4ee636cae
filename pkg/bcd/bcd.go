// Package bcd drives multiplexed BCD digit displays: N digit positions share
// four BCD code lines and each position has its own enable line.
package bcd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/itohio/esplab/pkg/hal"
	"periph.io/x/conn/v3/gpio"
)

const (
	// Bits is the number of BCD code lines.
	Bits = 4
	// MaxDigits is the largest number of digit positions a Display drives.
	MaxDigits = 3
)

var (
	// ErrNotBCD is returned for digit values above 9.
	ErrNotBCD = errors.New("digit is not a BCD value")
	// ErrPinMap is returned when a pin map has the wrong number of lines.
	ErrPinMap = errors.New("invalid pin map")
)

// EncodeDigits splits value into n decimal digits, most significant first.
// Digits above position n are dropped, so the result is the expansion of
// value mod 10^n.
func EncodeDigits(value uint32, n int) []uint8 {
	if n <= 0 {
		return nil
	}
	digits := make([]uint8, n)
	for i := n - 1; i >= 0; i-- {
		digits[i] = uint8(value % 10)
		value /= 10
	}
	return digits
}

// SetLines puts digit on the four code lines, bit 0 on lines[0].
// Values 10-15 fit in four bits but are not BCD and are rejected before any
// line changes.
func SetLines(digit uint8, lines []hal.Line) error {
	if len(lines) != Bits {
		return fmt.Errorf("%w: %d code lines, want %d", ErrPinMap, len(lines), Bits)
	}
	if digit > 9 {
		return fmt.Errorf("%w: %d", ErrNotBCD, digit)
	}
	for i, line := range lines {
		if err := line.Out(gpio.Level((digit>>i)&1 == 1)); err != nil {
			return fmt.Errorf("code line %d: %w", i, err)
		}
	}
	return nil
}

// Display is a multiplexed display with a fixed pin map.
type Display struct {
	code   []hal.Line
	enable []hal.Line
	hold   time.Duration
}

// NewDisplay builds a display from 4 code lines and 1..MaxDigits enable
// lines. enable[0] selects the most significant digit. hold is how long each
// enable stays high; zero strobes back to back.
func NewDisplay(code, enable []hal.Line, hold time.Duration) (*Display, error) {
	if len(code) != Bits {
		return nil, fmt.Errorf("%w: %d code lines, want %d", ErrPinMap, len(code), Bits)
	}
	if len(enable) == 0 || len(enable) > MaxDigits {
		return nil, fmt.Errorf("%w: %d enable lines, want 1..%d", ErrPinMap, len(enable), MaxDigits)
	}
	return &Display{
		code:   append([]hal.Line(nil), code...),
		enable: append([]hal.Line(nil), enable...),
		hold:   hold,
	}, nil
}

// Digits returns the number of digit positions.
func (d *Display) Digits() int { return len(d.enable) }

// Render shows value on all digit positions.
func (d *Display) Render(value uint32) error {
	return d.RenderDigits(value, len(d.enable))
}

// RenderDigits shows the lowest n digits of value on the first n positions.
// Each position is strobed once; callers refresh periodically for a steady
// image.
func (d *Display) RenderDigits(value uint32, n int) error {
	if n <= 0 || n > len(d.enable) {
		return fmt.Errorf("%w: %d digits on a %d digit display", ErrPinMap, n, len(d.enable))
	}
	for i, digit := range EncodeDigits(value, n) {
		if err := SetLines(digit, d.code); err != nil {
			return err
		}
		if err := d.strobe(i); err != nil {
			return err
		}
	}
	return nil
}

func (d *Display) strobe(i int) error {
	if err := d.enable[i].Out(gpio.High); err != nil {
		return fmt.Errorf("enable line %d: %w", i, err)
	}
	if d.hold > 0 {
		time.Sleep(d.hold)
	}
	if err := d.enable[i].Out(gpio.Low); err != nil {
		return fmt.Errorf("enable line %d: %w", i, err)
	}
	return nil
}

// Write implements hal.LCD.
func (d *Display) Write(value uint16) error {
	return d.Render(uint32(value))
}

// Refresh renders value() every period until ctx is done. Unlatched
// displays need this to stay lit.
func (d *Display) Refresh(ctx context.Context, period time.Duration, value func() uint32) error {
	if period <= 0 {
		return fmt.Errorf("refresh period must be positive, got %v", period)
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		if err := d.Render(value()); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
