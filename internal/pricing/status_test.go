package pricing

import (
	"testing"

	"mathmotion/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	info := StatusOf(models.StatusCompleted)
	assert.Equal(t, "Completed", info.Label)
	assert.Equal(t, 100, info.Progress)

	info = StatusOf(models.StatusSubmitted)
	assert.Equal(t, 10, info.Progress)

	// Unknown statuses fall back to a neutral presentation.
	info = StatusOf("frobnicating")
	assert.Equal(t, "frobnicating", info.Label)
	assert.Equal(t, "slate", info.Color)
	assert.Equal(t, 0, info.Progress)
}

func TestStatusProgressBounds(t *testing.T) {
	for status, info := range statusInfo {
		assert.GreaterOrEqual(t, info.Progress, 0, status)
		assert.LessOrEqual(t, info.Progress, 100, status)
		assert.NotEmpty(t, info.Label, status)
		assert.NotEmpty(t, info.Color, status)
	}
}

func TestNextStatusesAdvisory(t *testing.T) {
	assert.Equal(t, []string{models.StatusUnderReview, models.StatusRejected}, NextStatuses(models.StatusSubmitted))
	assert.Nil(t, NextStatuses(models.StatusCompleted))
	assert.Nil(t, NextStatuses("unknown"))

	// Every suggested status must itself be a known status.
	for from, tos := range nextStatuses {
		assert.True(t, KnownStatus(from), from)
		for _, to := range tos {
			assert.True(t, KnownStatus(to), to)
		}
	}
}
