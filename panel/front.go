package main

import (
	"image/color"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/esplab/pkg/bcd"
	"github.com/itohio/esplab/pkg/device"
	"github.com/itohio/esplab/pkg/leds"
	"github.com/itohio/esplab/pkg/sim"
)

// view is what the front panel shows.
type view struct {
	LEDs      []bool
	Value     uint16
	Unit      string
	Peak      uint16
	HasPeak   bool
	HoldUntil time.Time
	Paused    bool
	Frozen    bool
	Period    time.Duration
}

func newView(n int) view {
	return view{LEDs: make([]bool, n), Unit: device.UnitCM}
}

// withReading updates v from a line received from the board. Plotter
// channel lines do not drive the front panel.
func (v view) withReading(r device.Reading, bands leds.Bands, hold time.Duration) view {
	if r.Channel != "" {
		return v
	}
	if r.Unit != "" {
		v.Unit = r.Unit
	}
	if r.Max {
		v.Peak, v.HasPeak = r.Value, true
		v.Value = r.Value
		v.HoldUntil = r.Timestamp.Add(hold)
		return v
	}
	v.LEDs = litLEDs(bands, r.Value, len(v.LEDs))
	if !r.Timestamp.Before(v.HoldUntil) {
		v.Value = r.Value
	}
	return v
}

// viewFromStatus mirrors a simulated board exactly.
func viewFromStatus(st sim.Status, now time.Time) view {
	v := view{
		LEDs:   append([]bool(nil), st.LEDs...),
		Value:  uint16(st.Display),
		Unit:   st.Unit.String(),
		Paused: st.Paused,
		Frozen: st.Frozen,
		Period: st.Period,
	}
	peak := st.MaxCM
	if v.Unit == device.UnitIn {
		peak = st.MaxIn
	}
	v.Peak, v.HasPeak = peak, peak > 0
	if st.Holding {
		v.HoldUntil = now.Add(time.Second)
	}
	return v
}

func litLEDs(bands leds.Bands, value uint16, n int) []bool {
	out := make([]bool, n)
	lit := bands.Lit(value)
	for i := 0; i < lit && i < n; i++ {
		out[i] = true
	}
	return out
}

// displayText renders the value the way the BCD display shows it.
func (v view) displayText(digits int) string {
	var sb strings.Builder
	for _, d := range bcd.EncodeDigits(uint32(v.Value), digits) {
		sb.WriteByte('0' + d)
	}
	return sb.String()
}

func (v view) statusText(now time.Time) string {
	var flags []string
	if v.Paused {
		flags = append(flags, "PAUSED")
	}
	if v.Frozen {
		flags = append(flags, "FROZEN")
	}
	if now.Before(v.HoldUntil) {
		flags = append(flags, "MAX")
	}
	if v.HasPeak {
		flags = append(flags, "peak "+strconv.Itoa(int(v.Peak))+" "+v.Unit)
	}
	if v.Period > 0 {
		flags = append(flags, "every "+v.Period.String())
	}
	return strings.Join(flags, "  ")
}

var (
	ledOn  = color.RGBA{R: 255, G: 60, B: 40, A: 255}
	ledOff = color.RGBA{R: 60, G: 20, B: 20, A: 255}
	lcdFg  = color.RGBA{R: 120, G: 255, B: 120, A: 255}
)

// frontPanel draws the board: threshold LEDs, the digit display and flags.
type frontPanel struct {
	leds    []*canvas.Circle
	display *canvas.Text
	unit    *widget.Label
	status  *widget.Label
	digits  int

	content fyne.CanvasObject
}

func newFrontPanel(n, digits int) *frontPanel {
	f := &frontPanel{
		display: canvas.NewText(strings.Repeat("0", digits), lcdFg),
		unit:    widget.NewLabel(device.UnitCM),
		status:  widget.NewLabel(""),
		digits:  digits,
	}
	f.display.TextSize = 48
	f.display.TextStyle = fyne.TextStyle{Monospace: true}

	row := container.NewHBox()
	for range n {
		c := canvas.NewCircle(ledOff)
		c.StrokeColor = color.Black
		c.StrokeWidth = 1
		f.leds = append(f.leds, c)
		row.Add(container.NewGridWrap(fyne.NewSize(28, 28), c))
	}

	f.content = container.NewVBox(
		row,
		container.NewHBox(f.display, f.unit),
		f.status,
	)
	return f
}

// show must run on the fyne goroutine.
func (f *frontPanel) show(v view, now time.Time) {
	for i, c := range f.leds {
		c.FillColor = ledOff
		if i < len(v.LEDs) && v.LEDs[i] {
			c.FillColor = ledOn
		}
		c.Refresh()
	}
	f.display.Text = v.displayText(f.digits)
	f.display.Refresh()
	f.unit.SetText(v.Unit)
	f.status.SetText(v.statusText(now))
}
