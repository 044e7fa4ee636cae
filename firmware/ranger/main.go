//go:build tinygo

//go:generate tinygo flash -target=esp32c3-generic -ldflags="-X main.scenario=serial"

// Ranger measures distance with an HC-SR04, lights the threshold LEDs and
// shows the reading on the BCD display. The scenario selects the exercise.
package main

import (
	"context"
	"time"

	"github.com/itohio/esplab/firmware/board"
	"github.com/itohio/esplab/pkg/notify"
	"github.com/itohio/esplab/pkg/ranger"
	"github.com/itohio/esplab/pkg/timer"
)

// scenario is set at link time.
var scenario = "serial"

const (
	switchPollPeriod = 30 * time.Millisecond
	serialPollPeriod = 10 * time.Millisecond
)

func main() {
	ctx := context.Background()

	s, err := ranger.ParseScenario(scenario)
	if err != nil {
		fail(err)
	}
	opts := s.Options()

	display, err := board.Display()
	if err != nil {
		fail(err)
	}
	board.ConfigureSerial()

	p := ranger.Peripherals{
		Sensor: board.NewRanger(),
		LEDs:   board.LEDs(),
		LCD:    display,
		Serial: board.Serial,
	}

	if !s.Timed() {
		r, err := ranger.New(opts, p)
		if err != nil {
			fail(err)
		}
		board.ConfigureSwitches()
		go r.PollSwitches(ctx, board.Switches, switchPollPeriod)
		r.Loop(ctx, opts.Period)
		return
	}

	var task *notify.Task
	t, err := timer.New(opts.Period, func() { task.Notify() })
	if err != nil {
		fail(err)
	}
	p.Timer = t

	r, err := ranger.New(opts, p)
	if err != nil {
		fail(err)
	}
	task = notify.NewTask("distance", r.Measure)

	if err := board.OnPress(board.PIN_SW1, func() { r.HandleSwitch(ranger.SW1) }); err != nil {
		fail(err)
	}
	if err := board.OnPress(board.PIN_SW2, func() { r.HandleSwitch(ranger.SW2) }); err != nil {
		fail(err)
	}
	if opts.Commands {
		go board.PollSerial(ctx, serialPollPeriod, r.HandleCommand)
	}

	t.Start(ctx)
	task.Run(ctx)
}

func fail(err error) {
	for {
		println("ranger:", err.Error())
		time.Sleep(time.Second)
	}
}
