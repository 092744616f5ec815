package metrics

import (
	"github.com/shopspring/decimal"

	"CompteClient/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Derive computes the concentration-risk metrics: the sum of the top
// depositors' exposure, the sum of all branch balances, and the share of the
// former in the latter as a percentage. The share is undefined when the total
// is zero. Invalid amounts are left out of both sums and counted in Skipped.
func Derive(top []model.TopDepositor, branches []model.BranchDistribution) model.Metrics {
	var m model.Metrics

	for _, d := range top {
		if !d.TotalExposure.Valid {
			m.Skipped++
			continue
		}
		m.TotalTop10 = m.TotalTop10.Add(d.TotalExposure.Decimal)
	}
	for _, b := range branches {
		if !b.Amount.Valid {
			m.Skipped++
			continue
		}
		m.TotalAll = m.TotalAll.Add(b.Amount.Decimal)
	}

	m.Concentration = Concentration(m.TotalTop10, m.TotalAll)
	return m
}

// Concentration returns 100 × part / total, undefined for a zero total.
func Concentration(part, total decimal.Decimal) model.Ratio {
	if total.IsZero() {
		return model.Ratio{}
	}
	return model.Ratio{Value: part.Mul(hundred).Div(total), Defined: true}
}
