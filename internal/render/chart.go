package render

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"CompteClient/internal/view"
)

// ErrNoData is returned for a chart with nothing to draw.
var ErrNoData = errors.New("no data to chart")

const (
	donutWidth  = 900
	donutHeight = 460
	comboWidth  = 620
	comboHeight = 400

	barFraction = 0.6
	rangeMargin = 1.1
)

var (
	barColor  = drawing.ColorFromHex("636efa")
	lineColor = drawing.ColorFromHex("ef553b")
)

// ChartSVG draws the chart held by s as SVG.
func ChartSVG(w io.Writer, s view.Section) error {
	switch {
	case s.Donut != nil:
		return DonutSVG(w, *s.Donut)
	case s.Combo != nil:
		return ComboSVG(w, *s.Combo)
	}
	return fmt.Errorf("section %q holds no chart", s.Header)
}

// DonutSVG draws a donut chart. Slice labels carry the label and the share
// of the total when TextInfo asks for both.
func DonutSVG(w io.Writer, c view.DonutChart) error {
	var total float64
	for _, v := range c.Values {
		if v > 0 {
			total += v
		}
	}
	if total == 0 {
		return ErrNoData
	}

	values := make([]chart.Value, 0, len(c.Values))
	for i, v := range c.Values {
		if v <= 0 {
			continue
		}
		label := c.Labels[i]
		if c.TextInfo == "percent+label" {
			label = fmt.Sprintf("%s %.1f%%", label, 100*v/total)
		}
		values = append(values, chart.Value{Value: v, Label: label})
	}

	dc := chart.DonutChart{
		Title:  c.Title,
		Width:  donutWidth,
		Height: donutHeight,
		Values: values,
	}
	return dc.Render(chart.SVG, w)
}

// ComboSVG draws bars on the primary axis and a line on the secondary axis
// over the same categories, in the order given.
func ComboSVG(w io.Writer, c view.ComboChart) error {
	n := len(c.Categories)
	if n == 0 {
		return ErrNoData
	}

	xs := make([]float64, n)
	for i := range c.Categories {
		xs[i] = float64(i)
	}

	bars := barSeries{
		name:   c.Bar.Name,
		values: c.Bar.Values,
		style: chart.Style{
			FillColor:   barColor,
			StrokeColor: barColor,
			StrokeWidth: 1,
		},
	}
	line := chart.ContinuousSeries{
		Name:    c.Line.Name,
		YAxis:   chart.YAxisSecondary,
		XValues: xs,
		YValues: c.Line.Values,
		Style: chart.Style{
			StrokeColor: lineColor,
			StrokeWidth: 2,
			DotColor:    lineColor,
			DotWidth:    3,
		},
	}

	ch := chart.Chart{
		Title:      c.Title,
		Width:      comboWidth,
		Height:     comboHeight,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  c.XAxisTitle,
			Ticks: categoryTicks(c.Categories),
		},
		YAxis: chart.YAxis{
			Name:  c.Bar.AxisTitle,
			Range: &chart.ContinuousRange{Min: 0, Max: upperBound(c.Bar.Values)},
		},
		YAxisSecondary: chart.YAxis{
			Name:  c.Line.AxisTitle,
			Range: &chart.ContinuousRange{Min: 0, Max: upperBound(c.Line.Values)},
		},
		Series: []chart.Series{bars, line},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.SVG, w)
}

// categoryTicks labels each category at its index. go-chart derives the
// x range from the ticks, so two unlabeled ticks half a slot outside the
// first and last category keep the outer bars on the canvas.
func categoryTicks(categories []string) []chart.Tick {
	n := len(categories)
	ticks := make([]chart.Tick, 0, n+2)
	ticks = append(ticks, chart.Tick{Value: -0.5})
	for i, cat := range categories {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: cat})
	}
	return append(ticks, chart.Tick{Value: float64(n) - 0.5})
}

// upperBound leaves some headroom above the largest value and never returns
// a degenerate range.
func upperBound(values []float64) float64 {
	top := 0.0
	for _, v := range values {
		if !math.IsNaN(v) && v > top {
			top = v
		}
	}
	if top == 0 {
		return 1
	}
	return top * rangeMargin
}

// barSeries draws one bar per category, centered on the category index.
type barSeries struct {
	name   string
	style  chart.Style
	values []float64
}

func (b barSeries) GetName() string { return b.name }
func (b barSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (b barSeries) GetStyle() chart.Style { return b.style }
func (b barSeries) Len() int { return len(b.values) }
func (b barSeries) GetValues(i int) (x, y float64) { return float64(i), b.values[i] }

func (b barSeries) Validate() error {
	if len(b.values) == 0 {
		return ErrNoData
	}
	return nil
}

func (b barSeries) Render(r chart.Renderer, canvas chart.Box, xrange, yrange chart.Range, _ chart.Style) {
	for _, box := range b.boxes(canvas, xrange, yrange) {
		chart.Draw.Box(r, box, b.style)
	}
}

func (b barSeries) boxes(canvas chart.Box, xrange, yrange chart.Range) []chart.Box {
	half := barFraction / 2
	bottom := canvas.Bottom - yrange.Translate(0)
	out := make([]chart.Box, len(b.values))
	for i, v := range b.values {
		out[i] = chart.Box{
			Top:    canvas.Bottom - yrange.Translate(v),
			Left:   canvas.Left + xrange.Translate(float64(i)-half),
			Right:  canvas.Left + xrange.Translate(float64(i)+half),
			Bottom: bottom,
		}
	}
	return out
}
