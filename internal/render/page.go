package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"CompteClient/internal/view"
)

// Meta identifies one rendering of the page.
type Meta struct {
	RenderID    string
	GeneratedAt time.Time
	LoadedAt    time.Time
}

type chartBlock struct {
	SVG   template.HTML
	Error string
}

type pageData struct {
	Layout view.Layout
	Meta   Meta
	Charts map[string]chartBlock
}

type sectionArgs struct {
	Section view.Section
	Charts  map[string]chartBlock
}

type errorData struct {
	Title   string
	Message string
	Meta    Meta
}

var funcs = template.FuncMap{
	"sectionArgs": func(s view.Section, charts map[string]chartBlock) sectionArgs {
		return sectionArgs{Section: s, Charts: charts}
	},
}

var (
	pageTmpl  = template.Must(template.New("page").Funcs(funcs).Parse(pageTemplate))
	errorTmpl = template.Must(template.New("error").Parse(errorTemplate))
)

// Page writes the dashboard as a single HTML document with inline SVG charts.
// A chart that cannot be drawn is replaced by a message; the rest of the page
// is unaffected.
func Page(w io.Writer, l view.Layout, meta Meta) error {
	data := pageData{Layout: l, Meta: meta, Charts: map[string]chartBlock{}}
	for _, s := range l.Sections() {
		var id string
		switch {
		case s.Donut != nil:
			id = s.Donut.ID
		case s.Combo != nil:
			id = s.Combo.ID
		default:
			continue
		}
		var buf bytes.Buffer
		if err := ChartSVG(&buf, s); err != nil {
			if !errors.Is(err, ErrNoData) {
				log.Printf("[WARN] render chart %s: %v", id, err)
			}
			data.Charts[id] = chartBlock{Error: chartError(err)}
			continue
		}
		data.Charts[id] = chartBlock{SVG: template.HTML(buf.String())}
	}

	if err := pageTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("execute page template: %w", err)
	}
	return nil
}

// ErrorPage writes the error state shown when the data could not be loaded.
// No chart, table or metric is part of it.
func ErrorPage(w io.Writer, title string, cause error, meta Meta) error {
	data := errorData{Title: title, Message: cause.Error(), Meta: meta}
	if err := errorTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("execute error template: %w", err)
	}
	return nil
}

func chartError(err error) string {
	if errors.Is(err, ErrNoData) {
		return "Aucune donnée"
	}
	return "Graphique indisponible"
}

const pageStyle = `
    <style>
        * { box-sizing: border-box; }
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; margin: 0; padding: 24px; background: #f5f6fa; color: #202124; }
        h1 { margin: 0 0 16px; }
        h2 { font-size: 1.2rem; margin: 0 0 12px; }
        .section { background: #fff; border-radius: 8px; padding: 16px; margin-bottom: 16px; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
        .columns { display: grid; grid-template-columns: 1fr 1fr; gap: 16px; }
        .chart svg { width: 100%; height: auto; }
        .empty { color: #888; font-style: italic; }
        table { width: 100%; border-collapse: collapse; }
        th, td { padding: 6px 10px; border-bottom: 1px solid #eee; text-align: left; }
        td.num { text-align: right; font-variant-numeric: tabular-nums; }
        .metric { margin-bottom: 12px; }
        .metric .label { font-size: .85rem; color: #5f6368; }
        .metric .value { font-size: 1.8rem; }
        .warning { color: #b26a00; font-size: .8rem; }
        .error { border-left: 4px solid #d93025; }
        footer { color: #888; font-size: .75rem; }
        @media (max-width: 900px) { .columns { grid-template-columns: 1fr; } }
    </style>`

const pageTemplate = `<!DOCTYPE html>
<html lang="fr">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Layout.Title}}</title>` + pageStyle + `
</head>
<body>
    <h1>{{.Layout.Title}}</h1>
    {{range .Layout.Top}}{{template "section" (sectionArgs . $.Charts)}}{{end}}
    <div class="columns">
        <div class="column">{{range .Layout.Left}}{{template "section" (sectionArgs . $.Charts)}}{{end}}</div>
        <div class="column">{{range .Layout.Right}}{{template "section" (sectionArgs . $.Charts)}}{{end}}</div>
    </div>
    <footer>Rendu {{.Meta.RenderID}} · {{.Meta.GeneratedAt.Format "2006-01-02 15:04:05"}} · données chargées {{.Meta.LoadedAt.Format "2006-01-02 15:04:05"}}</footer>
</body>
</html>
{{define "section"}}{{$s := .Section}}
    <div class="section">
        {{with $s.Header}}<h2>{{.}}</h2>{{end}}
        {{with $s.Donut}}{{template "chart" (index $.Charts .ID)}}{{range .Warnings}}<div class="warning">{{.}}</div>{{end}}{{end}}
        {{with $s.Combo}}{{template "chart" (index $.Charts .ID)}}{{range .Warnings}}<div class="warning">{{.}}</div>{{end}}{{end}}
        {{with $s.Table}}
        <table id="{{.ID}}">
            <thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
            <tbody>{{range .Rows}}<tr>{{range $i, $c := .}}<td{{if $i}} class="num"{{end}}>{{$c.Text}}{{with $c.Warning}}<div class="warning">{{.}}</div>{{end}}</td>{{end}}</tr>{{end}}</tbody>
        </table>
        {{end}}
        {{range $s.Metrics}}
        <div class="metric">
            <div class="label">{{.Label}}</div>
            <div class="value">{{.Value}}</div>
            {{with .Warning}}<div class="warning">{{.}}</div>{{end}}
        </div>
        {{end}}
    </div>
{{end}}
{{define "chart"}}<div class="chart">{{if .SVG}}{{.SVG}}{{else}}<p class="empty">{{.Error}}</p>{{end}}</div>{{end}}`

const errorTemplate = `<!DOCTYPE html>
<html lang="fr">
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>` + pageStyle + `
</head>
<body>
    <h1>{{.Title}}</h1>
    <div class="section error">
        <h2>Données indisponibles</h2>
        <p>Le tableau de bord ne peut pas être affiché : les données agrégées n'ont pas pu être chargées.</p>
        <pre>{{.Message}}</pre>
    </div>
    <footer>Rendu {{.Meta.RenderID}} · {{.Meta.GeneratedAt.Format "2006-01-02 15:04:05"}}</footer>
</body>
</html>`
