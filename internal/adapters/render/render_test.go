package render_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/okian/avaliece/internal/adapters/render"
	"github.com/okian/avaliece/internal/domain/aggregate"
	"github.com/okian/avaliece/internal/domain/chart"
	. "github.com/smartystreets/goconvey/convey"
)

func figure() chart.Figure {
	return chart.Build([]aggregate.Group{
		{Code: "H1", Description: "Ler <textos>", Mean: 80, Count: 2},
		{Code: "H2", Description: "Somar", Mean: 50, Count: 1},
	})
}

func TestSVG(t *testing.T) {
	Convey("Given a figure with two bars", t, func() {
		r := render.New(render.WithSize(800, 400))

		Convey("When rendering SVG", func() {
			out, err := r.SVG(figure(), "prova-a")
			svg := string(out)

			Convey("Then bars, labels, hover text and the colorbar are present", func() {
				So(err, ShouldBeNil)
				So(strings.HasPrefix(svg, "<svg"), ShouldBeTrue)
				So(strings.Count(svg, `<g class="bar">`), ShouldEqual, 2)
				So(svg, ShouldContainSubstring, "80.0%")
				So(svg, ShouldContainSubstring, "50.0%")
				So(svg, ShouldContainSubstring, "<title>")
				So(svg, ShouldContainSubstring, `id="prova-a-scale"`)
				So(svg, ShouldContainSubstring, `stop-color="#e94f0e"`)
				So(svg, ShouldContainSubstring, `offset="0.25"`)
				So(svg, ShouldContainSubstring, "Acerto (%)")
				So(svg, ShouldContainSubstring, `fill="#fccf05"`)
			})

			Convey("Then description text is escaped", func() {
				So(svg, ShouldNotContainSubstring, "<textos>")
				So(svg, ShouldContainSubstring, "&lt;textos&gt;")
			})

			Convey("Then the y axis has ticks every 20", func() {
				for _, tick := range []string{">0<", ">20<", ">40<", ">60<", ">80<", ">100<"} {
					So(svg, ShouldContainSubstring, tick)
				}
			})
		})
	})

	Convey("Given a figure without bars", t, func() {
		out, err := render.New().SVG(chart.Build(nil), "x")

		Convey("Then nothing is drawn", func() {
			So(err, ShouldBeNil)
			So(string(out), ShouldEqual, "")
		})
	})
}

func TestPNG(t *testing.T) {
	Convey("Given a figure with two bars", t, func() {
		var buf bytes.Buffer
		err := render.New().PNG(&buf, figure())

		Convey("Then a PNG image is written", func() {
			So(err, ShouldBeNil)
			So(buf.Len(), ShouldBeGreaterThan, 8)
			So(buf.Bytes()[:8], ShouldResemble, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})
		})
	})

	Convey("Given a figure without bars", t, func() {
		var buf bytes.Buffer
		err := render.New().PNG(&buf, chart.Build(nil))

		Convey("Then ErrNoBars is returned", func() {
			So(errors.Is(err, render.ErrNoBars), ShouldBeTrue)
			So(buf.Len(), ShouldEqual, 0)
		})
	})
}
