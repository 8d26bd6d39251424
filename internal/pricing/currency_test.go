package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$15", FormatCurrency(1500, USD))
	assert.Equal(t, "₹15", FormatCurrency(1500, INR))
	assert.Equal(t, "$1,500", FormatCurrency(150000, USD))
	assert.Equal(t, "₹1,500", FormatCurrency(150000, INR))
	assert.Equal(t, "₹4,99,900", FormatCurrency(49990000, INR))
	assert.Equal(t, "$499,900", FormatCurrency(49990000, USD))
	assert.Equal(t, "$0", FormatCurrency(0, USD))

	// Zero fractional digits: minor remainders round to whole units.
	assert.Equal(t, "$8", FormatCurrency(750, USD))
	assert.Equal(t, "$7", FormatCurrency(749, USD))
}

func TestParseBudgetRange(t *testing.T) {
	tests := []struct {
		in       string
		currency Currency
		min, max int
	}{
		{"$50-$200", USD, 50, 200},
		{"50-200", USD, 50, 200},
		{"₹1000 - ₹5000", INR, 1000, 5000},
		{"100", USD, 100, 100},
		{"$1,500", USD, 1500, 1500},
		{"whatever works", USD, 50, 200},
		{"", USD, 50, 200},
		{"cheap", INR, 1000, 5000},
		{"50-100-200", USD, 50, 200},
	}
	for _, tt := range tests {
		min, max := ParseBudgetRange(tt.in, tt.currency)
		assert.Equal(t, tt.min, min, "min for %q", tt.in)
		assert.Equal(t, tt.max, max, "max for %q", tt.in)
	}
}
