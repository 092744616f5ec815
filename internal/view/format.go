package view

import (
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"CompteClient/internal/model"
)

// Placeholder is shown instead of a value that cannot be displayed.
const Placeholder = "N/A"

// FormatAmount formats d with thousands separators and two decimals,
// e.g. 1234567.5 -> "1,234,567.50".
func FormatAmount(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	intPart, frac, _ := strings.Cut(d.Abs().StringFixed(2), ".")
	n, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return sign + d.Abs().StringFixed(2)
	}
	return sign + humanize.BigComma(n) + "." + frac
}

// FormatNullAmount formats a possibly invalid amount. Invalid amounts yield
// the placeholder and model.ErrFormat.
func FormatNullAmount(d decimal.NullDecimal) (string, error) {
	if !d.Valid {
		return Placeholder, model.ErrFormat
	}
	return FormatAmount(d.Decimal), nil
}

// FormatPercent formats a ratio with two decimals and a trailing "%". An
// undefined ratio yields the placeholder and model.ErrDivisionUndefined.
func FormatPercent(r model.Ratio) (string, error) {
	v, err := r.Percent()
	if err != nil {
		return Placeholder, err
	}
	return v.StringFixed(2) + "%", nil
}
