package scope

import (
	"image/color"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/esplab/pkg/sample"
)

var (
	gridColor  = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	traceColor = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	bandColor  = color.RGBA{R: 0, G: 160, B: 60, A: 255}
	peakColor  = color.RGBA{R: 220, G: 60, B: 60, A: 255}
)

// traceRenderer renders the trace widget.
type traceRenderer struct {
	trace *Trace

	bg      *canvas.Rectangle
	objects []fyne.CanvasObject
}

// plot is the drawing area inside the axis margins.
type plot struct {
	x, y, w, h float32
	scale      Scale
}

func (p plot) pos(ts time.Time, v float64) fyne.Position {
	return fyne.NewPos(p.x+p.scale.X(ts)*p.w, p.y+p.h-p.scale.Y(v)*p.h)
}

func (r *traceRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 240)
}

func (r *traceRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.Refresh()
}

func (r *traceRenderer) Refresh() {
	r.trace.mu.RLock()
	samples := append([]sample.Sample(nil), r.trace.display...)
	bands := r.trace.bands
	peak := r.trace.peak
	unit := r.trace.unit
	scale := r.trace.scale
	r.trace.mu.RUnlock()

	size := r.trace.Size()
	r.objects = []fyne.CanvasObject{r.bg}
	if size.Width == 0 || size.Height == 0 {
		return
	}

	const (
		marginLeft   = 60
		marginRight  = 20
		marginTop    = 20
		marginBottom = 40
	)
	p := plot{
		x:     marginLeft,
		y:     marginTop,
		w:     size.Width - marginLeft - marginRight,
		h:     size.Height - marginTop - marginBottom,
		scale: scale,
	}

	r.drawGrid(p, unit)

	for _, b := range bands {
		left := p.pos(scale.XMin, float64(b))
		line := canvas.NewLine(bandColor)
		line.Position1 = left
		line.Position2 = fyne.NewPos(p.x+p.w, left.Y)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)
	}

	for i := 1; i < len(samples); i++ {
		line := canvas.NewLine(traceColor)
		line.Position1 = p.pos(samples[i-1].Timestamp, samples[i-1].Value)
		line.Position2 = p.pos(samples[i].Timestamp, samples[i].Value)
		line.StrokeWidth = 1.5
		r.objects = append(r.objects, line)
	}

	if peak != nil {
		text := canvas.NewText("MAX "+FormatValue(peak.Value, peak.Unit), peakColor)
		text.TextSize = 12
		text.Move(fyne.NewPos(p.x+10, p.y+5))
		r.objects = append(r.objects, text)
	}
}

func (r *traceRenderer) drawGrid(p plot, unit string) {
	const rows, cols = 8, 10
	for i := range rows + 1 {
		y := p.y + float32(i)*p.h/rows
		r.addLine(fyne.NewPos(p.x, y), fyne.NewPos(p.x+p.w, y))

		v := p.scale.YMax - float64(i)*(p.scale.YMax-p.scale.YMin)/rows
		text := canvas.NewText(FormatValue(v, unit), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(p.x-5, y-6))
		r.objects = append(r.objects, text)
	}

	span := p.scale.XMax.Sub(p.scale.XMin)
	for i := range cols + 1 {
		x := p.x + float32(i)*p.w/cols
		r.addLine(fyne.NewPos(x, p.y), fyne.NewPos(x, p.y+p.h))

		text := canvas.NewText(FormatOffset(span*time.Duration(i)/cols-span), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-20, p.y+p.h+5))
		r.objects = append(r.objects, text)
	}
}

func (r *traceRenderer) addLine(a, b fyne.Position) {
	line := canvas.NewLine(gridColor)
	line.Position1 = a
	line.Position2 = b
	line.StrokeWidth = 1
	r.objects = append(r.objects, line)
}

func (r *traceRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *traceRenderer) Destroy() {}

// FormatValue renders an axis value with its unit.
func FormatValue(v float64, unit string) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	if unit == "" {
		return s
	}
	return s + " " + unit
}

// FormatOffset renders a time offset relative to the newest sample.
func FormatOffset(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 1, 64) + "s"
}
