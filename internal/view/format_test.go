package view

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"CompteClient/internal/model"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234567.5", "1,234,567.50"},
		{"0", "0.00"},
		{"999.999", "1,000.00"},
		{"12", "12.00"},
		{"-4500.126", "-4,500.13"},
		{"98765432109876543210.1", "98,765,432,109,876,543,210.10"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestFormatNullAmount(t *testing.T) {
	s, err := FormatNullAmount(decimal.NullDecimal{})
	assert.Equal(t, Placeholder, s)
	assert.ErrorIs(t, err, model.ErrFormat)

	s, err = FormatNullAmount(decimal.NewNullDecimal(decimal.NewFromFloat(1234567.5)))
	assert.NoError(t, err)
	assert.Equal(t, "1,234,567.50", s)
}

func TestFormatPercent(t *testing.T) {
	s, err := FormatPercent(model.Ratio{Value: decimal.NewFromInt(25), Defined: true})
	assert.NoError(t, err)
	assert.Equal(t, "25.00%", s)

	s, err = FormatPercent(model.Ratio{Value: decimal.RequireFromString("33.33333"), Defined: true})
	assert.NoError(t, err)
	assert.Equal(t, "33.33%", s)

	s, err = FormatPercent(model.Ratio{})
	assert.ErrorIs(t, err, model.ErrDivisionUndefined)
	assert.Equal(t, Placeholder, s)
}
