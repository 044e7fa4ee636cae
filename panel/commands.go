package main

import (
	"fmt"
	"unicode"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/esplab/pkg/ranger"
)

// commands are the single byte serial commands of the distance exercise.
var commands = []struct {
	label string
	cmd   byte
}{
	{"Pause (O)", 'O'},
	{"Hold (H)", 'H'},
	{"Units (I)", 'I'},
	{"Max (M)", 'M'},
	{"Faster (F)", 'F'},
	{"Slower (S)", 'S'},
}

// isCommand reports whether r is one of the command keys.
func isCommand(r rune) (byte, bool) {
	r = unicode.ToUpper(r)
	for _, c := range commands {
		if rune(c.cmd) == r {
			return c.cmd, true
		}
	}
	return 0, false
}

// createCommandBar creates the command buttons and, for the simulated board,
// the two switches.
func createCommandBar(state *appState) fyne.CanvasObject {
	left := container.NewHBox()
	for _, c := range commands {
		btn := widget.NewButton(c.label, func() {
			handleCommand(state, c.cmd)
		})
		btn.Disable()
		state.commandBtns = append(state.commandBtns, btn)
		left.Add(btn)
	}

	right := container.NewHBox()
	if state.useMock {
		for _, sw := range []struct {
			label string
			bit   uint8
		}{{"SW1", ranger.SW1}, {"SW2", ranger.SW2}} {
			btn := widget.NewButton(sw.label, func() {
				handleSwitch(state, sw.bit)
			})
			btn.Disable()
			state.switchBtns = append(state.switchBtns, btn)
			right.Add(btn)
		}
	}

	return container.NewBorder(nil, nil, left, right, nil)
}

// handleCommand sends one command byte to the board.
func handleCommand(state *appState, cmd byte) {
	if state.device == nil || !state.device.IsConnected() {
		return
	}
	if err := state.device.Send(cmd); err != nil {
		dialog.ShowError(fmt.Errorf("failed to send %q: %w", cmd, err), state.window)
	}
}

// handleSwitch presses a switch on the simulated board.
func handleSwitch(state *appState, sw uint8) {
	if state.mock == nil || !state.mock.IsConnected() {
		return
	}
	if err := state.mock.Press(sw); err != nil {
		dialog.ShowError(fmt.Errorf("failed to press switch: %w", err), state.window)
	}
}

// setControlsEnabled enables the command and switch buttons.
func setControlsEnabled(state *appState, on bool) {
	for _, btn := range append(state.commandBtns, state.switchBtns...) {
		if on {
			btn.Enable()
		} else {
			btn.Disable()
		}
	}
}
