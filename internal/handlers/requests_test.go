package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int { return &n }

func TestValidateStepOne(t *testing.T) {
	assert.Empty(t, validateStep(1, requestIntake{Title: "Fourier series", Description: "Visualize the partial sums"}))

	assert.NotEmpty(t, validateStep(1, requestIntake{Title: "", Description: "x"}))
	assert.NotEmpty(t, validateStep(1, requestIntake{Title: "x", Description: ""}))

	// Whitespace-only counts as empty.
	assert.NotEmpty(t, validateStep(1, requestIntake{Title: "   ", Description: "x"}))
	assert.NotEmpty(t, validateStep(1, requestIntake{Title: "x", Description: "\n\t"}))
}

func TestValidateStepTwo(t *testing.T) {
	assert.Empty(t, validateStep(2, requestIntake{AnimationType: "formula_basic"}))
	assert.Empty(t, validateStep(2, requestIntake{AnimationType: "math_objects_3d", DurationSeconds: intPtr(300)}))

	assert.NotEmpty(t, validateStep(2, requestIntake{AnimationType: ""}))
	assert.NotEmpty(t, validateStep(2, requestIntake{AnimationType: "crayon"}))

	// Duration is optional but must come from the discrete set.
	assert.NotEmpty(t, validateStep(2, requestIntake{AnimationType: "formula_basic", DurationSeconds: intPtr(45)}))
	for _, d := range []int{5, 10, 15, 30, 60, 120, 300} {
		assert.Empty(t, validateStep(2, requestIntake{AnimationType: "formula_basic", DurationSeconds: intPtr(d)}), "duration %d", d)
	}
}

func TestValidateStepThree(t *testing.T) {
	assert.Empty(t, validateStep(3, requestIntake{ScriptContent: "Show e^{i\\pi}+1=0 building up"}))
	assert.NotEmpty(t, validateStep(3, requestIntake{ScriptContent: "  "}))

	// Style preferences are optional.
	assert.Empty(t, validateStep(3, requestIntake{ScriptContent: "x", StylePreferences: ""}))
}

func TestValidateStepFour(t *testing.T) {
	assert.Empty(t, validateStep(4, requestIntake{}))
	assert.Empty(t, validateStep(4, requestIntake{BudgetMin: intPtr(50), BudgetMax: intPtr(200), Deadline: "2026-10-01"}))

	assert.NotEmpty(t, validateStep(4, requestIntake{BudgetMin: intPtr(-1)}))
	assert.NotEmpty(t, validateStep(4, requestIntake{BudgetMin: intPtr(500), BudgetMax: intPtr(100)}))
	assert.NotEmpty(t, validateStep(4, requestIntake{Deadline: "next tuesday"}))
}

func TestValidateAll(t *testing.T) {
	full := requestIntake{
		Title:         "Taylor expansion",
		Description:   "Animate successive approximations of sin(x)",
		AnimationType: "formula_advanced",
		ScriptContent: "Start with the curve, overlay polynomials",
	}
	assert.Empty(t, validateAll(full))

	empty := requestIntake{}
	errs := validateAll(empty)
	// Missing title, description, animation type and script content.
	assert.Len(t, errs, 4)
}

func TestBudgetRange(t *testing.T) {
	// Explicit values win over the free-form field.
	min, max := budgetRange(requestIntake{BudgetMin: intPtr(100), BudgetMax: intPtr(400), Budget: "$50-$200"}, "USD")
	assert.Equal(t, 100, *min)
	assert.Equal(t, 400, *max)

	// Free-form range is parsed.
	min, max = budgetRange(requestIntake{Budget: "$50-$200"}, "USD")
	assert.Equal(t, 50, *min)
	assert.Equal(t, 200, *max)

	// Unparseable falls back to currency defaults.
	min, max = budgetRange(requestIntake{Budget: "whatever works"}, "INR")
	assert.Equal(t, 1000, *min)
	assert.Equal(t, 5000, *max)

	// No budget at all stays unset.
	min, max = budgetRange(requestIntake{}, "USD")
	assert.Nil(t, min)
	assert.Nil(t, max)
}
