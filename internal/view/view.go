// Package view turns the aggregate tables into declarative descriptions of
// the dashboard's charts, table and metrics. Every description is plain data;
// drawing them is left to the render package.
package view

// Axis identifies the value axis a series is plotted against.
type Axis string

const (
	AxisPrimary   Axis = "y"
	AxisSecondary Axis = "y2"
)

// SeriesKind is the mark used to draw a series.
type SeriesKind string

const (
	SeriesBar  SeriesKind = "bar"
	SeriesLine SeriesKind = "line"
)

// Series is one value series bound to the chart's categories.
type Series struct {
	Name      string     `json:"name"`
	Kind      SeriesKind `json:"kind"`
	Axis      Axis       `json:"axis"`
	AxisTitle string     `json:"axis_title"`
	Values    []float64  `json:"values"`
}

// DonutChart is a proportion chart with a hole in the middle.
type DonutChart struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Labels       []string  `json:"labels"`
	Values       []float64 `json:"values"`
	Hole         float64   `json:"hole"`
	TextPosition string    `json:"text_position"`
	TextInfo     string    `json:"text_info"`
	Warnings     []string  `json:"warnings,omitempty"`
}

// ComboChart overlays a bar series on the primary axis and a line series on
// the secondary axis over the same categories.
type ComboChart struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	XAxisTitle string   `json:"x_axis_title"`
	Categories []string `json:"categories"`
	Bar        Series   `json:"bar"`
	Line       Series   `json:"line"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Cell is one formatted table cell. Warning is set when the value could not
// be formatted.
type Cell struct {
	Text    string `json:"text"`
	Warning string `json:"warning,omitempty"`
}

// Table is a formatted table.
type Table struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Columns []string `json:"columns"`
	Rows    [][]Cell `json:"rows"`
}

// Metric is a labeled scalar value.
type Metric struct {
	Label   string `json:"label"`
	Value   string `json:"value"`
	Warning string `json:"warning,omitempty"`
}

// Section is a headed block of the page holding one widget kind.
type Section struct {
	Header  string      `json:"header"`
	Donut   *DonutChart `json:"donut,omitempty"`
	Combo   *ComboChart `json:"combo,omitempty"`
	Table   *Table      `json:"table,omitempty"`
	Metrics []Metric    `json:"metrics,omitempty"`
}

// Layout is the whole page: one full-width row on top, then two columns.
type Layout struct {
	Title string    `json:"title"`
	Top   []Section `json:"top"`
	Left  []Section `json:"left"`
	Right []Section `json:"right"`
}

// Sections returns every section in page order.
func (l *Layout) Sections() []Section {
	out := make([]Section, 0, len(l.Top)+len(l.Left)+len(l.Right))
	out = append(out, l.Top...)
	out = append(out, l.Left...)
	return append(out, l.Right...)
}

// Chart returns the section holding the chart with the given id.
func (l *Layout) Chart(id string) (Section, bool) {
	for _, s := range l.Sections() {
		if s.Donut != nil && s.Donut.ID == id {
			return s, true
		}
		if s.Combo != nil && s.Combo.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Metrics returns the metrics shown on the page.
func (l *Layout) Metrics() []Metric {
	var out []Metric
	for _, s := range l.Sections() {
		out = append(out, s.Metrics...)
	}
	return out
}
