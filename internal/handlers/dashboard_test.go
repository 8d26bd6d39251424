package handlers

import (
	"testing"

	"mathmotion/internal/models"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

func TestDownloadable(t *testing.T) {
	path := strPtr("projects/1/100_render.mp4")

	assert.True(t, downloadable(models.Project{Status: models.StatusCompleted, DeliverablePath: path}))

	// Every other combination stays gated.
	assert.False(t, downloadable(models.Project{Status: models.StatusCompleted, DeliverablePath: nil}))
	assert.False(t, downloadable(models.Project{Status: models.StatusInProgress, DeliverablePath: path}))
	assert.False(t, downloadable(models.Project{Status: models.StatusInRevision, DeliverablePath: path}))
	assert.False(t, downloadable(models.Project{Status: models.StatusSubmitted}))
}

func TestProjectViewPricePreference(t *testing.T) {
	p := models.Project{
		Status:              models.StatusInProgress,
		Currency:            "USD",
		EstimatedPriceMinor: int64Ptr(9000),
	}
	assert.Equal(t, "$90", newProjectView(p).DisplayPrice)

	// The final price, once set, wins over the estimate.
	p.FinalPriceMinor = int64Ptr(12000)
	assert.Equal(t, "$120", newProjectView(p).DisplayPrice)

	// No prices at all: nothing displayed.
	assert.Empty(t, newProjectView(models.Project{Status: models.StatusSubmitted, Currency: "USD"}).DisplayPrice)
}

func TestProjectViewStatusFallback(t *testing.T) {
	v := newProjectView(models.Project{Status: "archived", Currency: "USD"})
	assert.Equal(t, 0, v.StatusInfo.Progress)
	assert.Equal(t, "archived", v.StatusInfo.Label)
}
