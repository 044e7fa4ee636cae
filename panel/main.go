package main

import (
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/esplab/pkg/config"
	"github.com/itohio/esplab/pkg/device"
	"github.com/itohio/esplab/pkg/leds"
	"github.com/itohio/esplab/pkg/sample"
	"github.com/itohio/esplab/pkg/scope"
	"github.com/itohio/esplab/pkg/sim"
)

const updateInterval = 33 * time.Millisecond

func main() {
	var (
		portFlag     = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyUSB0)")
		configFlag   = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag     = flag.Bool("mock", false, "Use the simulated board instead of a serial port")
		scenarioFlag = flag.String("scenario", "", "Simulated exercise: polled, interrupt or serial (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *scenarioFlag != "" {
		cfg.Ranger.Scenario = *scenarioFlag
		if _, err := cfg.Ranger.Options(); err != nil {
			log.Fatalf("Invalid scenario: %v", err)
		}
	}

	application := app.NewWithID("com.itohio.esplab")

	window := application.NewWindow("Distance Lab")
	window.Resize(fyne.NewSize(1000, 700))
	window.CenterOnScreen()

	state := &appState{
		cfg:     cfg,
		cfgPath: *configFlag,
		window:  window,
		useMock: *mockFlag,
		front:   newFrontPanel(sim.LEDCount, cfg.Display.Digits),
		trace:   scope.New(cfg.Panel.Window, cfg.Panel.TracePoints, cfg.Ranger.Bands),
		history: sample.NewHistory(cfg.Panel.Window),
	}

	toolbar := createToolbar(state)
	commandBar := createCommandBar(state)

	window.Canvas().SetOnTypedRune(func(r rune) {
		if cmd, ok := isCommand(r); ok {
			handleCommand(state, cmd)
		}
	})

	window.SetContent(container.NewBorder(
		container.NewVBox(toolbar, state.front.content),
		commandBar,
		nil,
		nil,
		state.trace,
	))
	window.SetOnClosed(func() {
		closeChain(state.chain)
	})
	window.ShowAndRun()
}

// appState holds the application state. Fields are touched on the fyne
// goroutine only, except the view which the reader goroutine updates.
type appState struct {
	cfg     *config.Config
	cfgPath string
	window  fyne.Window

	device  device.Device
	mock    *device.Mock // set when the simulated board is used
	useMock bool
	chain   *chain

	front       *frontPanel
	trace       *scope.Trace
	history     *sample.History
	connectBtn  *widget.Button
	commandBtns []*widget.Button
	switchBtns  []*widget.Button

	viewMu         sync.Mutex
	view           view
	lastUpdateTime time.Time
}

// chain tracks the reading pipeline for graceful shutdown.
type chain struct {
	device  device.Device
	samples <-chan sample.Sample
	done    chan struct{} // closed when the sample consumer exits
	stop    chan struct{} // stops the status poller
	polled  chan struct{} // closed when the status poller exits
}

// createToolbar creates the toolbar with the Connect and Settings buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("Connect", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	clearBtn := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
		state.history.Clear()
		state.trace.Update(state.history)
	})

	return container.NewHBox(connectBtn, settingsBtn, clearBtn)
}

// closeChain closes the device and waits for the pipeline to drain.
func closeChain(c *chain) {
	if c == nil {
		return
	}
	if c.stop != nil {
		close(c.stop)
		<-c.polled
	}
	if err := c.device.Close(); err != nil {
		log.Printf("Error closing device: %v", err)
	}
	<-c.done
}

// handleConnect connects or disconnects the board.
func handleConnect(state *appState) {
	if state.device != nil && state.device.IsConnected() {
		closeChain(state.chain)
		state.chain = nil
		state.device = nil
		state.mock = nil
		state.connectBtn.SetText("Connect")
		setControlsEnabled(state, false)
		log.Printf("Disconnected")
		return
	}

	var dev device.Device
	if state.useMock {
		state.mock = device.NewMock(state.cfg)
		dev = state.mock
	} else {
		dev = device.New(state.cfg.Serial.Port, state.cfg.Serial.BaudRate, device.DefaultBufferSize)
	}

	if err := dev.Connect(); err != nil {
		state.mock = nil
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to start simulated board: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	state.device = dev
	if state.useMock {
		log.Printf("Connected to simulated board (%s)", state.cfg.Ranger.Scenario)
	} else {
		log.Printf("Connected to serial port: %s", state.cfg.Serial.Port)
	}

	state.connectBtn.SetText("Disconnect")
	setControlsEnabled(state, true)

	state.viewMu.Lock()
	state.view = newView(sim.LEDCount)
	state.viewMu.Unlock()

	c := &chain{
		device:  dev,
		samples: sample.NewConverter(500)(dev.Readings()),
		done:    make(chan struct{}),
	}
	go consumeSamples(state, c)

	if state.mock != nil {
		c.stop = make(chan struct{})
		c.polled = make(chan struct{})
		go pollStatus(state, state.mock, c)
	}
	state.chain = c
}

// consumeSamples feeds the trace and, for a real board, the front panel.
func consumeSamples(state *appState, c *chain) {
	defer close(c.done)

	bands := leds.Bands(state.cfg.Ranger.Bands)
	hold := state.cfg.Ranger.Hold
	mirrorReadings := state.mock == nil

	for s := range c.samples {
		state.history.Add(s)

		state.viewMu.Lock()
		if mirrorReadings {
			state.view = state.view.withReading(s.Raw, bands, hold)
		}
		v := state.view
		now := time.Now()
		due := now.Sub(state.lastUpdateTime) >= updateInterval
		if due {
			state.lastUpdateTime = now
		}
		state.viewMu.Unlock()

		if !due {
			continue
		}
		fyne.Do(func() {
			state.trace.Update(state.history)
			if mirrorReadings {
				state.front.show(v, now)
			}
		})
	}
}

// pollStatus mirrors the simulated board onto the front panel.
func pollStatus(state *appState, mock *device.Mock, c *chain) {
	defer close(c.polled)

	ticker := time.NewTicker(updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			st, ok := mock.Status()
			if !ok {
				continue
			}
			v := viewFromStatus(st, now)
			fyne.Do(func() {
				state.front.show(v, now)
			})
		}
	}
}
