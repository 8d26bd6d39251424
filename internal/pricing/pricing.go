package pricing

import (
	"fmt"
	"math"
)

type Category string

const (
	CategoryFormulaBasic    Category = "formula_basic"
	CategoryFormulaAdvanced Category = "formula_advanced"
	CategoryMathObjects3D   Category = "math_objects_3d"
	CategoryResearchFull    Category = "research_full"
)

type Currency string

const (
	USD Currency = "USD"
	INR Currency = "INR"
)

// Quick-estimate input bounds.
const (
	MinEstimateDuration = 5
	MaxEstimateDuration = 120
	MinComplexity       = 0.5
	MaxComplexity       = 3.0
)

// basePriceMinor holds the per-category base price in minor units.
var basePriceMinor = map[Category]map[Currency]int64{
	CategoryFormulaBasic:    {USD: 1500, INR: 49900},
	CategoryFormulaAdvanced: {USD: 3500, INR: 129900},
	CategoryMathObjects3D:   {USD: 5900, INR: 249900},
	CategoryResearchFull:    {USD: 12900, INR: 499900},
}

func ValidCategory(c Category) bool {
	_, ok := basePriceMinor[c]
	return ok
}

func ValidCurrency(c Currency) bool {
	return c == USD || c == INR
}

// EstimateMinor computes the displayed price in minor units:
// round(base × max(1, duration/10) × complexity). Durations under the
// 10-second baseline do not discount the price.
func EstimateMinor(category Category, durationSeconds int, complexity float64, currency Currency) (int64, error) {
	base, ok := basePriceMinor[category][currency]
	if !ok {
		return 0, fmt.Errorf("no base price for category %q currency %q", category, currency)
	}

	mult := float64(durationSeconds) / 10
	if mult < 1 {
		mult = 1
	}

	return int64(math.Round(float64(base) * mult * complexity)), nil
}

// ValidateQuickEstimate checks the estimate-form bounds. The project request
// form allows unconstrained durations; only the quick estimator is bounded.
func ValidateQuickEstimate(category Category, durationSeconds int, complexity float64, currency Currency) error {
	if !ValidCategory(category) {
		return fmt.Errorf("unknown animation type %q", category)
	}
	if !ValidCurrency(currency) {
		return fmt.Errorf("unknown currency %q", currency)
	}
	if durationSeconds < MinEstimateDuration || durationSeconds > MaxEstimateDuration {
		return fmt.Errorf("duration must be between %d and %d seconds", MinEstimateDuration, MaxEstimateDuration)
	}
	if complexity < MinComplexity || complexity > MaxComplexity {
		return fmt.Errorf("complexity must be between %.1f and %.1f", MinComplexity, MaxComplexity)
	}
	return nil
}
