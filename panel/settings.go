package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/esplab/pkg/device"
	"github.com/itohio/esplab/pkg/leds"
	"github.com/itohio/esplab/pkg/ranger"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createRangerTab(state),
		createMockTab(state),
		createPanelTab(state),
	)

	d := dialog.NewCustom("Settings", "Close", tabs, state.window)
	d.Resize(fyne.NewSize(600, 450))
	d.Show()
}

func saveConfig(state *appState) {
	if err := state.cfg.Save(state.cfgPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
	}
}

// reconnect restarts the pipeline so a changed setting takes effect.
func reconnect(state *appState) {
	if state.device == nil || !state.device.IsConnected() {
		return
	}
	handleConnect(state)
	handleConnect(state)
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := device.Ports()
	portOptions := []string{}
	if err == nil {
		for _, port := range ports {
			portOptions = append(portOptions, port.Name)
		}
	}

	currentPort := state.cfg.Serial.Port
	found := false
	for _, opt := range portOptions {
		if opt == currentPort {
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentPort != "" {
		portSelect.SetSelected(currentPort)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			changed := false
			if portSelect.Selected != "" && portSelect.Selected != state.cfg.Serial.Port {
				state.cfg.Serial.Port = portSelect.Selected
				changed = true
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 && baud != state.cfg.Serial.BaudRate {
				state.cfg.Serial.BaudRate = baud
				changed = true
			}
			saveConfig(state)
			if changed && !state.useMock {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createRangerTab creates the distance exercise tab.
func createRangerTab(state *appState) *container.TabItem {
	scenarios := []string{
		ranger.ScenarioPolled.String(),
		ranger.ScenarioInterrupt.String(),
		ranger.ScenarioSerial.String(),
	}
	scenarioSelect := widget.NewSelect(scenarios, nil)
	scenarioSelect.SetSelected(state.cfg.Ranger.ScenarioValue().String())

	periodEntry := widget.NewEntry()
	periodEntry.SetText(state.cfg.Ranger.Period.String())

	stepEntry := widget.NewEntry()
	stepEntry.SetText(state.cfg.Ranger.Step.String())

	holdEntry := widget.NewEntry()
	holdEntry.SetText(state.cfg.Ranger.Hold.String())

	bandsEntry := widget.NewEntry()
	bandsEntry.SetText(formatBands(state.cfg.Ranger.Bands))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Scenario (simulated)", Widget: scenarioSelect},
			{Text: "Period", Widget: periodEntry},
			{Text: "F/S Step", Widget: stepEntry},
			{Text: "Max Hold", Widget: holdEntry},
			{Text: "LED Bands (cm)", Widget: bandsEntry},
		},
		OnSubmit: func() {
			rc := state.cfg.Ranger
			rc.Scenario = scenarioSelect.Selected
			if d, err := time.ParseDuration(periodEntry.Text); err == nil {
				rc.Period = d
			}
			if d, err := time.ParseDuration(stepEntry.Text); err == nil {
				rc.Step = d
			}
			if d, err := time.ParseDuration(holdEntry.Text); err == nil {
				rc.Hold = d
			}
			bands, err := parseBands(bandsEntry.Text)
			if err != nil {
				dialog.ShowError(err, state.window)
				return
			}
			rc.Bands = bands
			if _, err := rc.Options(); err != nil {
				dialog.ShowError(err, state.window)
				return
			}
			state.cfg.Ranger = rc
			state.trace.SetBands(rc.Bands)
			saveConfig(state)
			if state.useMock {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Ranger", form)
}

// createMockTab creates the simulated sensor tab.
func createMockTab(state *appState) *container.TabItem {
	baseEntry := widget.NewEntry()
	baseEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.BaseCM))

	amplitudeEntry := widget.NewEntry()
	amplitudeEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.AmplitudeCM))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Mock.NoiseCM))

	periodEntry := widget.NewEntry()
	periodEntry.SetText(state.cfg.Mock.WavePeriod.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Mean Distance (cm)", Widget: baseEntry},
			{Text: "Swing (cm)", Widget: amplitudeEntry},
			{Text: "Noise (cm)", Widget: noiseEntry},
			{Text: "Swing Period", Widget: periodEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseFloat(baseEntry.Text, 32); err == nil {
				state.cfg.Mock.BaseCM = float32(v)
			}
			if v, err := strconv.ParseFloat(amplitudeEntry.Text, 32); err == nil {
				state.cfg.Mock.AmplitudeCM = float32(v)
			}
			if v, err := strconv.ParseFloat(noiseEntry.Text, 32); err == nil {
				state.cfg.Mock.NoiseCM = float32(v)
			}
			if d, err := time.ParseDuration(periodEntry.Text); err == nil {
				state.cfg.Mock.WavePeriod = d
			}
			saveConfig(state)
			if state.useMock {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Mock", form)
}

// createPanelTab creates the trace settings tab.
func createPanelTab(state *appState) *container.TabItem {
	windowEntry := widget.NewEntry()
	windowEntry.SetText(state.cfg.Panel.Window.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Trace Window", Widget: windowEntry},
		},
		OnSubmit: func() {
			if d, err := time.ParseDuration(windowEntry.Text); err == nil && d > 0 {
				state.cfg.Panel.Window = d
				state.history.SetWindow(d)
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Panel", form)
}

// parseBands parses "10, 20, 30" into validated band thresholds.
func parseBands(s string) ([]uint16, error) {
	var out []uint16
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		v, err := strconv.ParseUint(f, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("band %q: %w", f, err)
		}
		out = append(out, uint16(v))
	}
	if err := leds.Bands(out).Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func formatBands(b []uint16) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = strconv.Itoa(int(v))
	}
	return strings.Join(parts, ", ")
}
