// Package blink contains the LED blinking exercises.
package blink

import (
	"context"
	"fmt"
	"time"

	"github.com/itohio/esplab/pkg/leds"
)

// Mode is what Apply does with an LED.
type Mode uint8

const (
	On Mode = iota
	Off
	Toggle
)

// Command drives one LED. Cycles and Period only matter for Toggle: the LED
// changes state 2*Cycles times, Period apart.
type Command struct {
	Mode   Mode
	LED    int
	Cycles int
	Period time.Duration
}

// Apply executes cmd on bank. A cancelled ctx stops a toggle run early.
func Apply(ctx context.Context, bank *leds.Bank, cmd Command) error {
	switch cmd.Mode {
	case On:
		return bank.On(cmd.LED)
	case Off:
		return bank.Off(cmd.LED)
	case Toggle:
		for i := 0; i < 2*cmd.Cycles; i++ {
			if err := bank.Toggle(cmd.LED); err != nil {
				return err
			}
			if err := sleep(ctx, cmd.Period); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown blink mode %d", cmd.Mode)
	}
}

// Step lights one LED for a while, then turns it off.
type Step struct {
	LED int
	For time.Duration
}

// TrafficLight is the traffic light sequence: red, amber flashes, green,
// amber flashes. LED indexes are 0 green, 1 amber, 2 red.
var TrafficLight = []Step{
	{LED: 2, For: time.Second},
	{LED: 1, For: 500 * time.Millisecond},
	{LED: 1, For: 500 * time.Millisecond},
	{LED: 0, For: 3 * time.Second},
	{LED: 1, For: 500 * time.Millisecond},
	{LED: 1, For: 500 * time.Millisecond},
	{LED: 2, For: time.Second},
}

// RunSequence plays steps once, or forever when loop is set, until ctx is
// done.
func RunSequence(ctx context.Context, bank *leds.Bank, steps []Step, loop bool) error {
	for {
		for _, s := range steps {
			if err := bank.On(s.LED); err != nil {
				return err
			}
			err := sleep(ctx, s.For)
			if offErr := bank.Off(s.LED); offErr != nil {
				return offErr
			}
			if err != nil {
				return err
			}
		}
		if !loop {
			return nil
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
