//go:build tinygo

//go:generate tinygo flash -target=esp32c3-generic -ldflags="-X main.mode=traffic"

// Blink runs the LED exercises: a toggle burst on LED 1, or the traffic
// light sequence.
package main

import (
	"context"
	"time"

	"github.com/itohio/esplab/firmware/board"
	"github.com/itohio/esplab/pkg/blink"
)

// mode is "toggle" or "traffic", set at link time.
var mode = "toggle"

func main() {
	ctx := context.Background()
	bank := board.LEDs()

	if mode == "traffic" {
		if err := blink.RunSequence(ctx, bank, blink.TrafficLight, true); err != nil {
			println("blink:", err.Error())
		}
		return
	}

	cmd := blink.Command{Mode: blink.Toggle, LED: 0, Cycles: 10, Period: 500 * time.Millisecond}
	for {
		if err := blink.Apply(ctx, bank, cmd); err != nil {
			println("blink:", err.Error())
		}
		time.Sleep(2 * time.Second)
	}
}
