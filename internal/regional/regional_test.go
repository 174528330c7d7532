package regional

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSettings(t *testing.T) {
	s := Default()

	assert.Equal(t, "Colombia", s.Country)
	assert.Equal(t, "COP", s.Currency.Code)
	assert.Equal(t, "es-CO", s.NumberFormat)
	assert.NotEmpty(t, s.ExpenseCategories)
}

func TestGroupedAmount(t *testing.T) {
	f := NewFormatter(Default())

	tests := []struct {
		name   string
		amount float64
		want   string
	}{
		{name: "thousands", amount: 50000, want: "50.000"},
		{name: "millions", amount: 1250000, want: "1.250.000"},
		{name: "rounds to whole units", amount: 19999.6, want: "20.000"},
		{name: "small amount has no separator", amount: 900, want: "900"},
		{name: "zero", amount: 0, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.GroupedAmount(tt.amount))
		})
	}
}

func TestNewFormatterBadLocaleFallsBack(t *testing.T) {
	s := Default()
	s.NumberFormat = "???"

	f := NewFormatter(s)

	// Spanish grouping still applies.
	assert.Equal(t, "50.000", f.GroupedAmount(50000))
}
