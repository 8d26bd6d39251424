package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateMinor(t *testing.T) {
	tests := []struct {
		name       string
		category   Category
		duration   int
		complexity float64
		currency   Currency
		want       int64
	}{
		{"basic baseline", CategoryFormulaBasic, 10, 1.0, USD, 1500},
		{"basic 30s double complexity", CategoryFormulaBasic, 30, 2.0, USD, 9000},
		{"duration below baseline floors at 1", CategoryFormulaBasic, 5, 1.0, USD, 1500},
		{"duration below baseline with complexity", CategoryFormulaBasic, 5, 0.5, USD, 750},
		{"basic inr baseline", CategoryFormulaBasic, 10, 1.0, INR, 49900},
		{"advanced 60s", CategoryFormulaAdvanced, 60, 1.0, USD, 21000},
		{"3d objects 15s", CategoryMathObjects3D, 15, 1.0, USD, 8850},
		{"research 120s max complexity", CategoryResearchFull, 120, 3.0, USD, 464400},
		{"rounding", CategoryFormulaBasic, 11, 1.1, USD, 1815},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EstimateMinor(tt.category, tt.duration, tt.complexity, tt.currency)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEstimateMinorUnknownCategory(t *testing.T) {
	_, err := EstimateMinor(Category("watercolor"), 10, 1.0, USD)
	assert.Error(t, err)

	_, err = EstimateMinor(CategoryFormulaBasic, 10, 1.0, Currency("EUR"))
	assert.Error(t, err)
}

func TestDurationMultiplierNeverDiscounts(t *testing.T) {
	base, err := EstimateMinor(CategoryFormulaBasic, 10, 1.0, USD)
	require.NoError(t, err)

	for _, d := range []int{5, 6, 7, 8, 9} {
		got, err := EstimateMinor(CategoryFormulaBasic, d, 1.0, USD)
		require.NoError(t, err)
		assert.Equal(t, base, got, "duration %d must not discount below baseline", d)
	}
}

func TestValidateQuickEstimate(t *testing.T) {
	assert.NoError(t, ValidateQuickEstimate(CategoryFormulaBasic, 5, 0.5, USD))
	assert.NoError(t, ValidateQuickEstimate(CategoryResearchFull, 120, 3.0, INR))

	assert.Error(t, ValidateQuickEstimate(CategoryFormulaBasic, 4, 1.0, USD))
	assert.Error(t, ValidateQuickEstimate(CategoryFormulaBasic, 121, 1.0, USD))
	assert.Error(t, ValidateQuickEstimate(CategoryFormulaBasic, 10, 0.4, USD))
	assert.Error(t, ValidateQuickEstimate(CategoryFormulaBasic, 10, 3.1, USD))
	assert.Error(t, ValidateQuickEstimate(Category("bogus"), 10, 1.0, USD))
	assert.Error(t, ValidateQuickEstimate(CategoryFormulaBasic, 10, 1.0, Currency("GBP")))
}
