// Package chart turns aggregated skill groups into a bar chart figure.
// The figure is rendering-agnostic; adapters draw it as SVG or PNG.
package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/avaliece/internal/domain/aggregate"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	Title         = "Taxa Média de Acerto por Habilidade"
	XTitle        = "Habilidade"
	YTitle        = "Taxa de Acerto (%)"
	ColorbarTitle = "Acerto (%)"

	RangeMin = 0.0
	RangeMax = 100.0
)

// Stop is one anchor of the color scale.
type Stop struct {
	At    float64
	Color drawing.Color
}

// Stops is the fixed red-to-green scale used for every chart.
var Stops = []Stop{
	{At: 0, Color: hex("e94f0e")},
	{At: 25, Color: hex("f59c00")},
	{At: 50, Color: hex("fccf05")},
	{At: 75, Color: hex("2db39e")},
	{At: 100, Color: hex("26a737")},
}

func hex(s string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}

// Bar is one skill in the figure.
type Bar struct {
	Code        string        `json:"code"`
	Description string        `json:"description"`
	Value       float64       `json:"value"`
	Color       drawing.Color `json:"-"`
	Fill        string        `json:"fill"`
	Label       string        `json:"label"`
	Hover       string        `json:"hover"`
}

// Figure is a complete bar chart description.
type Figure struct {
	Title         string  `json:"title"`
	XTitle        string  `json:"x_title"`
	YTitle        string  `json:"y_title"`
	ColorbarTitle string  `json:"colorbar_title"`
	YMin          float64 `json:"y_min"`
	YMax          float64 `json:"y_max"`
	Bars          []Bar   `json:"bars"`
}

// Empty reports whether the figure has nothing to draw.
func (f Figure) Empty() bool { return len(f.Bars) == 0 }

// Build maps groups to bars, keeping their order.
func Build(groups []aggregate.Group) Figure {
	fig := Figure{
		Title:         Title,
		XTitle:        XTitle,
		YTitle:        YTitle,
		ColorbarTitle: ColorbarTitle,
		YMin:          RangeMin,
		YMax:          RangeMax,
		Bars:          make([]Bar, 0, len(groups)),
	}
	for _, g := range groups {
		c := ColorAt(g.Mean)
		fig.Bars = append(fig.Bars, Bar{
			Code:        g.Code,
			Description: g.Description,
			Value:       g.Mean,
			Color:       c,
			Fill:        Hex(c),
			Label:       Label(g.Mean),
			Hover:       Hover(g),
		})
	}
	return fig
}

// Label formats a rate with one decimal, e.g. "80.0%".
func Label(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

// Hover is the tooltip text of a bar.
func Hover(g aggregate.Group) string {
	return fmt.Sprintf("Habilidade: %s\nTaxa de Acerto (%%): %.2f\nDescrição da Habilidade: %s", g.Code, g.Mean, g.Description)
}

// ColorAt interpolates the scale at v, clamped to [RangeMin, RangeMax].
func ColorAt(v float64) drawing.Color {
	if math.IsNaN(v) {
		v = RangeMin
	}
	v = math.Max(RangeMin, math.Min(RangeMax, v))
	for i := 1; i < len(Stops); i++ {
		lo, hi := Stops[i-1], Stops[i]
		if v > hi.At {
			continue
		}
		t := (v - lo.At) / (hi.At - lo.At)
		return drawing.Color{
			R: lerp(lo.Color.R, hi.Color.R, t),
			G: lerp(lo.Color.G, hi.Color.G, t),
			B: lerp(lo.Color.B, hi.Color.B, t),
			A: 255,
		}
	}
	return Stops[len(Stops)-1].Color
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// Hex renders c as "#rrggbb".
func Hex(c drawing.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
