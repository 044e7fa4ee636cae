//go:build tinygo

//go:generate tinygo flash -target=esp32c3-generic

// BCD counts 0..999 on the three digit display.
package main

import (
	"time"

	"github.com/itohio/esplab/firmware/board"
)

const step = 250 * time.Millisecond

func main() {
	display, err := board.Display()
	if err != nil {
		for {
			println("bcd:", err.Error())
			time.Sleep(time.Second)
		}
	}

	var n uint32
	for {
		if err := display.Render(n); err != nil {
			println("bcd:", err.Error())
		}
		n = (n + 1) % 1000
		time.Sleep(step)
	}
}
