// Package render draws chart figures: inline SVG for the dashboard page and
// PNG for download.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"math"
	"strconv"

	"github.com/okian/avaliece/internal/domain/chart"
	"github.com/okian/avaliece/pkg/metrics"
	gochart "github.com/wcharczuk/go-chart/v2"
)

// ErrNoBars is returned by PNG for a figure without bars.
var ErrNoBars = errors.New("chart has no bars")

//go:embed templates/*.tmpl
var templateFS embed.FS

var svgTemplate = template.Must(template.ParseFS(templateFS, "templates/bar.svg.tmpl"))

const (
	marginLeft   = 70
	marginRight  = 110
	marginTop    = 44
	marginBottom = 70
	minSlot      = 36
	tickStep     = 20
)

// Renderer draws figures at a fixed size.
type Renderer struct {
	width  int
	height int
}

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithSize sets the canvas size in pixels.
func WithSize(width, height int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
		if height > 0 {
			r.height = height
		}
	}
}

// New creates a renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{width: 960, height: 500}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type svgStop struct{ Offset, Color string }

type svgTick struct {
	Y     string
	Label string
}

type svgBar struct {
	X, Y, W, H, CX, LabelY   string
	Fill, Label, Code, Hover string
}

type svgData struct {
	ID            string
	Width         int
	Height        int
	Left          string
	Right         string
	Top           string
	TickX         string
	PlotH         string
	BarX          string
	CodeY         string
	XTitleX       string
	XTitleY       string
	YTitleY       string
	ColorTitleY   string
	Title         string
	XTitle        string
	YTitle        string
	ColorbarTitle string
	Stops         []svgStop
	Ticks         []svgTick
	Bars          []svgBar
}

func px(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }

// SVG returns the figure as an inline <svg> element. id must be unique in the
// page; it namespaces the gradient. A figure without bars renders as "".
func (r *Renderer) SVG(fig chart.Figure, id string) (template.HTML, error) {
	if fig.Empty() {
		return "", nil
	}

	width := math.Max(float64(r.width), float64(marginLeft+marginRight+minSlot*len(fig.Bars)))
	height := float64(r.height)
	left, right := float64(marginLeft), width-marginRight
	top, bottom := float64(marginTop), height-marginBottom
	plotH := bottom - top
	span := fig.YMax - fig.YMin
	y := func(v float64) float64 {
		v = math.Max(fig.YMin, math.Min(fig.YMax, v))
		return bottom - (v-fig.YMin)/span*plotH
	}

	d := svgData{ID: id, Width: int(width), Height: r.height}
	d.Title, d.XTitle, d.YTitle, d.ColorbarTitle = fig.Title, fig.XTitle, fig.YTitle, fig.ColorbarTitle
	d.Left, d.Right, d.Top, d.TickX = px(left), px(right), px(top), px(left-8)
	d.PlotH, d.BarX, d.CodeY = px(plotH), px(right+30), px(bottom+20)
	d.XTitleX, d.XTitleY, d.YTitleY = px((left+right)/2), px(height-16), px((top+bottom)/2)
	d.ColorTitleY = px(top - 10)

	for _, s := range chart.Stops {
		// gradient runs bottom (0) to top (100)
		d.Stops = append(d.Stops, svgStop{
			Offset: strconv.FormatFloat((s.At-chart.RangeMin)/(chart.RangeMax-chart.RangeMin), 'f', -1, 64),
			Color:  chart.Hex(s.Color),
		})
	}
	for v := fig.YMin; v <= fig.YMax; v += tickStep {
		d.Ticks = append(d.Ticks, svgTick{Y: px(y(v)), Label: strconv.Itoa(int(v))})
	}

	slot := (right - left) / float64(len(fig.Bars))
	barW := slot * 0.8
	for i, b := range fig.Bars {
		x := left + float64(i)*slot + (slot-barW)/2
		barTop := y(b.Value)
		h := bottom - barTop
		labelY := barTop + 18
		if h < 24 {
			labelY = barTop - 4 // too short to hold the label
		}
		d.Bars = append(d.Bars, svgBar{
			X:      px(x),
			Y:      px(barTop),
			W:      px(barW),
			H:      px(h),
			CX:     px(x + barW/2),
			LabelY: px(labelY),
			Fill:   b.Fill,
			Label:  b.Label,
			Code:   b.Code,
			Hover:  b.Hover,
		})
	}

	var buf bytes.Buffer
	if err := svgTemplate.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render svg: %w", err)
	}
	metrics.RecordChartRender("svg", len(fig.Bars))
	return template.HTML(buf.String()), nil //nolint:gosec // produced by html/template
}

// PNG writes the figure as a PNG bar chart.
func (r *Renderer) PNG(w io.Writer, fig chart.Figure) error {
	if fig.Empty() {
		return ErrNoBars
	}

	bars := make([]gochart.Value, 0, len(fig.Bars))
	for _, b := range fig.Bars {
		bars = append(bars, gochart.Value{
			Label: b.Code,
			Value: math.Max(fig.YMin, math.Min(fig.YMax, b.Value)),
			Style: gochart.Style{FillColor: b.Color, StrokeColor: b.Color, StrokeWidth: 1},
		})
	}

	ticks := make([]gochart.Tick, 0, 6)
	for v := fig.YMin; v <= fig.YMax; v += tickStep {
		ticks = append(ticks, gochart.Tick{Value: v, Label: strconv.Itoa(int(v))})
	}

	width := r.width
	if need := marginLeft + marginRight + minSlot*len(bars); need > width {
		width = need
	}
	bc := gochart.BarChart{
		Title:      fig.Title,
		Width:      width,
		Height:     r.height,
		Background: gochart.Style{Padding: gochart.Box{Top: 50, Left: 16, Right: 16, Bottom: 16}},
		BarSpacing: 8,
		YAxis: gochart.YAxis{
			Name:  fig.YTitle,
			Range: &gochart.ContinuousRange{Min: fig.YMin, Max: fig.YMax},
			Ticks: ticks,
		},
		Bars: bars,
	}

	if err := bc.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	metrics.RecordChartRender("png", len(bars))
	return nil
}
