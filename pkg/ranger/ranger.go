// Package ranger implements the ultrasonic distance exercises: a periodic
// measuring task that drives threshold LEDs and a BCD LCD, switch and serial
// command handlers, and optional streaming of readings over the serial line.
package ranger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/itohio/esplab/pkg/hal"
	"github.com/itohio/esplab/pkg/leds"
)

// Switch bits as returned by a switch read.
const (
	SW1 uint8 = 1 << iota
	SW2
)

// ErrMissing is returned when a required peripheral is not supplied.
var ErrMissing = errors.New("missing peripheral")

// PeriodSetter is the sampling timer as seen by the F/S commands.
type PeriodSetter interface {
	Period() time.Duration
	UpdatePeriod(d time.Duration) error
}

// Peripherals the ranger is wired to. Serial and Timer may be nil when the
// scenario does not use them.
type Peripherals struct {
	Sensor hal.DistanceSensor
	LEDs   *leds.Bank
	LCD    hal.LCD
	Serial io.Writer
	Timer  PeriodSetter
}

// Ranger is one distance exercise instance.
type Ranger struct {
	opts   Options
	state  State
	sensor hal.DistanceSensor
	bank   *leds.Bank
	lcd    hal.LCD
	timer  PeriodSetter

	outMu sync.Mutex
	out   io.Writer

	last atomic.Uint32
	now  func() time.Time
}

// New validates opts and wires a ranger to p.
func New(opts Options, p Peripherals) (*Ranger, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	switch {
	case p.Sensor == nil:
		return nil, fmt.Errorf("%w: distance sensor", ErrMissing)
	case p.LEDs == nil:
		return nil, fmt.Errorf("%w: leds", ErrMissing)
	case p.LCD == nil:
		return nil, fmt.Errorf("%w: lcd", ErrMissing)
	case (opts.Stream || opts.Commands) && p.Serial == nil:
		return nil, fmt.Errorf("%w: serial", ErrMissing)
	}
	return &Ranger{
		opts:   opts,
		sensor: p.Sensor,
		bank:   p.LEDs,
		lcd:    p.LCD,
		timer:  p.Timer,
		out:    p.Serial,
		now:    time.Now,
	}, nil
}

// Options returns the options the ranger was built with.
func (r *Ranger) Options() Options { return r.opts }

// State exposes the shared flags.
func (r *Ranger) State() *State { return &r.state }

// Last returns the most recent reading.
func (r *Ranger) Last() uint16 { return uint16(r.last.Load()) }

// Snapshot copies the shared flags.
func (r *Ranger) Snapshot() Snapshot { return r.state.Snapshot(r.now()) }

// Measure is the work unit run on every timer wake.
func (r *Ranger) Measure(ctx context.Context) error {
	if r.state.Paused() {
		return nil
	}

	unit := r.state.Unit()
	v, err := r.read(unit)
	if err != nil {
		return fmt.Errorf("read distance: %w", err)
	}
	r.last.Store(uint32(v))
	if r.opts.TrackMax {
		r.state.Record(unit, v)
	}

	if err := r.opts.Bands.Apply(r.bank, v); err != nil {
		return err
	}
	if !r.state.Frozen() && !r.state.Holding(r.now()) {
		if err := r.lcd.Write(v); err != nil {
			return fmt.Errorf("lcd: %w", err)
		}
	}
	if r.opts.Stream {
		return r.send(FormatReading(v, unit))
	}
	return nil
}

func (r *Ranger) read(unit Unit) (uint16, error) {
	if unit == Inches {
		return r.sensor.ReadInches()
	}
	return r.sensor.ReadCentimeters()
}

// HandleSwitch applies a switch press: SW1 pauses, SW2 freezes the display.
func (r *Ranger) HandleSwitch(sw uint8) {
	switch sw {
	case SW1:
		r.state.TogglePause()
	case SW2:
		r.state.ToggleFreeze()
	}
}

// HandleCommand dispatches one received serial byte. Unknown bytes and
// commands the scenario does not support are ignored.
func (r *Ranger) HandleCommand(b byte) {
	if !r.opts.Commands {
		return
	}
	switch b {
	case 'O', 'o':
		r.state.TogglePause()
	case 'H', 'h':
		r.state.ToggleFreeze()
	case 'I', 'i':
		r.state.ToggleUnit()
	case 'M', 'm':
		r.reportMax()
	case 'F', 'f':
		r.adjustPeriod(-r.opts.Step)
	case 'S', 's':
		r.adjustPeriod(r.opts.Step)
	}
}

func (r *Ranger) reportMax() {
	if !r.opts.TrackMax {
		return
	}
	unit := r.state.Unit()
	peak := r.state.Max(unit)
	if err := r.send(FormatMax(peak, unit)); err != nil {
		log.Printf("report max: %v", err)
	}
	if err := r.lcd.Write(peak); err != nil {
		log.Printf("report max: lcd: %v", err)
	}
	r.state.Hold(r.now().Add(r.opts.Hold))
}

func (r *Ranger) adjustPeriod(delta time.Duration) {
	if r.timer == nil {
		return
	}
	p := r.timer.Period() + delta
	if p < r.opts.MinPeriod {
		p = r.opts.MinPeriod
	}
	if err := r.timer.UpdatePeriod(p); err != nil {
		log.Printf("update period: %v", err)
	}
}

func (r *Ranger) send(line string) error {
	if r.out == nil {
		return nil
	}
	r.outMu.Lock()
	defer r.outMu.Unlock()
	if _, err := io.WriteString(r.out, line); err != nil {
		return fmt.Errorf("serial: %w", err)
	}
	return nil
}

// Loop measures every period until ctx is done. It is the delay-driven
// variant of the exercise that runs without a timer.
func (r *Ranger) Loop(ctx context.Context, period time.Duration) error {
	for {
		if err := r.Measure(ctx); err != nil {
			log.Printf("measure: %v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(period):
		}
	}
}

// PollSwitches reads the switches every period and applies presses on
// their rising edge. Only a single switch at a time counts as a press.
func (r *Ranger) PollSwitches(ctx context.Context, read func() uint8, period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	var prev uint8
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			cur := read()
			if cur != prev && (cur == SW1 || cur == SW2) {
				r.HandleSwitch(cur)
			}
			prev = cur
		}
	}
}

// FormatReading renders a streamed reading line.
func FormatReading(v uint16, unit Unit) string {
	buf := make([]byte, 0, 12)
	buf = strconv.AppendUint(buf, uint64(v), 10)
	buf = append(buf, ' ')
	buf = append(buf, unit.String()...)
	buf = append(buf, "\r\n"...)
	return string(buf)
}

// FormatMax renders the reply to the M command.
func FormatMax(v uint16, unit Unit) string {
	buf := make([]byte, 0, 16)
	buf = strconv.AppendUint(buf, uint64(v), 10)
	buf = append(buf, " MAX "...)
	buf = append(buf, unit.String()...)
	buf = append(buf, "\r\n"...)
	return string(buf)
}
