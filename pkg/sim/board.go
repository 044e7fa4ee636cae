package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/itohio/esplab/pkg/config"
	"github.com/itohio/esplab/pkg/hal"
	"github.com/itohio/esplab/pkg/leds"
	"github.com/itohio/esplab/pkg/notify"
	"github.com/itohio/esplab/pkg/ranger"
	"github.com/itohio/esplab/pkg/timer"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// LEDCount is the number of threshold LEDs on the board.
const LEDCount = 3

// ErrRunning is returned when starting a board twice.
var ErrRunning = errors.New("board already running")

// Status is what the front panel of the board shows.
type Status struct {
	ranger.Snapshot
	LEDs    []bool
	Display uint32
	Last    uint16
	Period  time.Duration
	Runs    uint64
}

// Board is a complete distance exercise on simulated hardware.
type Board struct {
	Scenario ranger.Scenario
	Sensor   *Sensor
	LEDPins  []*gpiotest.Pin
	LEDs     *leds.Bank
	LCD      *LatchedDisplay
	Ranger   *ranger.Ranger

	timer *timer.Timer
	task  *notify.Task

	period   time.Duration
	poll     time.Duration
	switches atomic.Uint32

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBoard builds the scenario selected by cfg. Serial output goes to out.
func NewBoard(cfg *config.Config, out io.Writer) (*Board, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	opts, err := cfg.Ranger.Options()
	if err != nil {
		return nil, err
	}

	lcd, err := NewLatchedDisplay(cfg.Display.Digits, cfg.Display.Hold)
	if err != nil {
		return nil, fmt.Errorf("display: %w", err)
	}

	b := &Board{
		Scenario: cfg.Ranger.ScenarioValue(),
		Sensor:   NewSensor(&cfg.Mock),
		LEDPins:  NewPins("LED", LEDCount),
		LCD:      lcd,
		period:   opts.Period,
		poll:     cfg.Ranger.PollPeriod,
	}
	b.LEDs = leds.NewBank(hal.Lines(b.LEDPins...)...)

	p := ranger.Peripherals{
		Sensor: b.Sensor,
		LEDs:   b.LEDs,
		LCD:    b.LCD,
		Serial: out,
	}
	if b.Scenario.Timed() {
		b.timer, err = timer.New(opts.Period, func() { b.task.Notify() })
		if err != nil {
			return nil, err
		}
		p.Timer = b.timer
	}

	b.Ranger, err = ranger.New(opts, p)
	if err != nil {
		return nil, err
	}
	b.task = notify.NewTask("distance", b.Ranger.Measure)
	return b, nil
}

// Start powers the board up. It returns immediately.
func (b *Board) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		return ErrRunning
	}
	ctx, b.cancel = context.WithCancel(ctx)

	if b.Scenario.Timed() {
		b.goRun(func() error { return b.task.Run(ctx) })
		b.timer.Start(ctx)
		return nil
	}

	b.goRun(func() error { return b.Ranger.Loop(ctx, b.period) })
	b.goRun(func() error {
		return b.Ranger.PollSwitches(ctx, func() uint8 { return uint8(b.switches.Swap(0)) }, b.poll)
	})
	return nil
}

func (b *Board) goRun(fn func() error) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := fn(); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("board: %v", err)
		}
	}()
}

// Stop powers the board down and waits for its tasks to return.
func (b *Board) Stop() {
	b.mu.Lock()
	cancel := b.cancel
	b.cancel = nil
	b.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.wg.Wait()
}

// Running reports whether the board is started.
func (b *Board) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cancel != nil
}

// Press presses a switch. In the polled scenario the press is latched
// until the next poll, otherwise it is delivered like an edge interrupt.
func (b *Board) Press(sw uint8) {
	if b.Scenario.Timed() {
		b.Ranger.HandleSwitch(sw)
		return
	}
	b.switches.Store(uint32(sw))
}

// Command delivers one byte received on the serial line.
func (b *Board) Command(c byte) {
	b.Ranger.HandleCommand(c)
}

// Runs is the number of completed measurements on the timed scenarios.
func (b *Board) Runs() uint64 { return b.task.Runs() }

// Snapshot reads the board state.
func (b *Board) Snapshot() Status {
	s := Status{
		Snapshot: b.Ranger.Snapshot(),
		LEDs:     Levels(b.LEDPins),
		Display:  b.LCD.Value(),
		Last:     b.Ranger.Last(),
		Period:   b.period,
		Runs:     b.task.Runs(),
	}
	if b.timer != nil {
		s.Period = b.timer.Period()
	}
	return s
}
