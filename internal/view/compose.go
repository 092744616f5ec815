package view

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"CompteClient/internal/model"
)

// Widget ids.
const (
	ChartProducts = "produits"
	ChartBranches = "agences"
	ChartManagers = "gestionnaires"
	TableTop      = "deposants"
)

const (
	pageTitle = "Compte client"

	donutHole = 0.6

	countAxisTitle = "Nombre de compte"
)

// ProductExposure describes the exposure-by-product donut chart.
func ProductExposure(rows []model.ProductExposure) DonutChart {
	c := DonutChart{
		ID:           ChartProducts,
		Title:        "Total Encours par Produit",
		Labels:       make([]string, len(rows)),
		Values:       make([]float64, len(rows)),
		Hole:         donutHole,
		TextPosition: "inside",
		TextInfo:     "percent+label",
	}
	for i, r := range rows {
		c.Labels[i] = r.ProductName
		v, ok := chartValue(r.AvailableBalance)
		if !ok {
			c.Warnings = append(c.Warnings, invalidWarning(r.ProductName))
		}
		c.Values[i] = v
	}
	return c
}

// BranchDistribution describes the balance and account count per branch.
// Categories keep the row order.
func BranchDistribution(rows []model.BranchDistribution) ComboChart {
	cats := make([]string, len(rows))
	amounts := make([]decimal.NullDecimal, len(rows))
	counts := make([]sql.NullInt64, len(rows))
	for i, r := range rows {
		cats[i], amounts[i], counts[i] = r.BranchName, r.Amount, r.AccountCount
	}
	return combo(comboSpec{
		id:        ChartBranches,
		title:     "Répartition par Agences",
		xTitle:    "Agence",
		barName:   "Encours (Montant)",
		barYTitle: "Montant en Millions",
	}, cats, amounts, counts)
}

// ManagerPerformance describes the balance and account count of the top 10
// managers. Categories keep the row order.
func ManagerPerformance(rows []model.ManagerPerformance) ComboChart {
	cats := make([]string, len(rows))
	amounts := make([]decimal.NullDecimal, len(rows))
	counts := make([]sql.NullInt64, len(rows))
	for i, r := range rows {
		cats[i], amounts[i], counts[i] = r.Manager, r.Amount, r.AccountCount
	}
	return combo(comboSpec{
		id:        ChartManagers,
		title:     "Top 10 Performance gestionnaire",
		xTitle:    "Gestionnaire",
		barName:   "Encours de dépôt",
		barYTitle: "Montant en millions",
	}, cats, amounts, counts)
}

// TopDepositors describes the top depositors table.
func TopDepositors(rows []model.TopDepositor) Table {
	t := Table{
		ID:      TableTop,
		Title:   "Top 10 déposants",
		Columns: []string{"Déposant", "Total Encours"},
		Rows:    make([][]Cell, len(rows)),
	}
	for i, r := range rows {
		amount := Cell{}
		text, err := FormatNullAmount(r.TotalExposure)
		amount.Text = text
		if err != nil {
			amount.Warning = invalidWarning(r.Depositor)
		}
		t.Rows[i] = []Cell{{Text: r.Depositor}, amount}
	}
	return t
}

// SummaryMetrics describes the three concentration-risk metrics.
func SummaryMetrics(m model.Metrics) []Metric {
	out := []Metric{
		{Label: "Total des 10 premiers déposants", Value: FormatAmount(m.TotalTop10)},
		{Label: "Encours total", Value: FormatAmount(m.TotalAll)},
	}
	if m.Skipped > 0 {
		w := fmt.Sprintf("%d invalid amount(s) excluded", m.Skipped)
		out[0].Warning, out[1].Warning = w, w
	}

	pct := Metric{Label: "% de concentration de risque"}
	v, err := FormatPercent(m.Concentration)
	pct.Value = v
	if err != nil {
		pct.Warning = "total exposure is zero: " + err.Error()
	}
	return append(out, pct)
}

// Compose arranges all widgets on the page: the product donut across the
// top, the two combo charts in the left column, the depositors table and the
// metrics in the right column.
func Compose(ds *model.Dataset, m model.Metrics) Layout {
	products := ProductExposure(ds.Products)
	branches := BranchDistribution(ds.Branches)
	managers := ManagerPerformance(ds.Managers)
	top := TopDepositors(ds.TopDepositors)

	return Layout{
		Title: pageTitle,
		Top: []Section{
			{Header: "Total Encours (montant) par produit", Donut: &products},
		},
		Left: []Section{
			{Header: branches.Title, Combo: &branches},
			{Header: managers.Title, Combo: &managers},
		},
		Right: []Section{
			{Header: top.Title, Table: &top},
			{Metrics: SummaryMetrics(m)},
		},
	}
}

type comboSpec struct {
	id, title, xTitle  string
	barName, barYTitle string
}

func combo(s comboSpec, cats []string, amounts []decimal.NullDecimal, counts []sql.NullInt64) ComboChart {
	c := ComboChart{
		ID:         s.id,
		Title:      s.title,
		XAxisTitle: s.xTitle,
		Categories: cats,
		Bar: Series{
			Name:      s.barName,
			Kind:      SeriesBar,
			Axis:      AxisPrimary,
			AxisTitle: s.barYTitle,
			Values:    make([]float64, len(cats)),
		},
		Line: Series{
			Name:      countAxisTitle,
			Kind:      SeriesLine,
			Axis:      AxisSecondary,
			AxisTitle: countAxisTitle,
			Values:    make([]float64, len(cats)),
		},
	}
	for i := range cats {
		v, ok := chartValue(amounts[i])
		if !ok {
			c.Warnings = append(c.Warnings, invalidWarning(cats[i]))
		}
		c.Bar.Values[i] = v

		if counts[i].Valid {
			c.Line.Values[i] = float64(counts[i].Int64)
		} else {
			c.Warnings = append(c.Warnings, fmt.Sprintf("%s: invalid account count", cats[i]))
		}
	}
	return c
}

// chartValue returns 0 for an invalid amount.
func chartValue(d decimal.NullDecimal) (float64, bool) {
	if !d.Valid {
		return 0, false
	}
	return d.Decimal.InexactFloat64(), true
}

func invalidWarning(label string) string {
	return fmt.Sprintf("%s: %v", label, model.ErrFormat)
}
