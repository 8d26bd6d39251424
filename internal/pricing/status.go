package pricing

import "mathmotion/internal/models"

// StatusInfo is the presentation of a project status: a human label, a color
// token, and a 0-100 progress value.
type StatusInfo struct {
	Label    string `json:"label"`
	Color    string `json:"color"`
	Progress int    `json:"progress"`
}

var statusInfo = map[string]StatusInfo{
	models.StatusDraft:          {Label: "Draft", Color: "slate", Progress: 5},
	models.StatusSubmitted:      {Label: "Submitted", Color: "blue", Progress: 10},
	models.StatusUnderReview:    {Label: "Under Review", Color: "amber", Progress: 25},
	models.StatusPaymentPending: {Label: "Payment Pending", Color: "orange", Progress: 40},
	models.StatusAssigned:       {Label: "Assigned", Color: "violet", Progress: 55},
	models.StatusInProgress:     {Label: "In Progress", Color: "indigo", Progress: 70},
	models.StatusInRevision:     {Label: "In Revision", Color: "cyan", Progress: 85},
	models.StatusCompleted:      {Label: "Completed", Color: "emerald", Progress: 100},
	models.StatusCancelled:      {Label: "Cancelled", Color: "slate", Progress: 0},
	models.StatusRejected:       {Label: "Rejected", Color: "rose", Progress: 0},
}

// nextStatuses suggests follow-up statuses per status. Advisory only: the
// admin console may set any status regardless of this map.
var nextStatuses = map[string][]string{
	models.StatusDraft:          {models.StatusSubmitted},
	models.StatusSubmitted:      {models.StatusUnderReview, models.StatusRejected},
	models.StatusUnderReview:    {models.StatusPaymentPending, models.StatusRejected},
	models.StatusPaymentPending: {models.StatusAssigned, models.StatusCancelled},
	models.StatusAssigned:       {models.StatusInProgress},
	models.StatusInProgress:     {models.StatusInRevision, models.StatusCompleted},
	models.StatusInRevision:     {models.StatusInProgress, models.StatusCompleted},
}

// StatusOf returns the presentation for a status. Unknown values get a
// neutral fallback rather than an error.
func StatusOf(status string) StatusInfo {
	if info, ok := statusInfo[status]; ok {
		return info
	}
	return StatusInfo{Label: status, Color: "slate", Progress: 0}
}

// KnownStatus reports whether the status is part of the project lifecycle.
func KnownStatus(status string) bool {
	_, ok := statusInfo[status]
	return ok
}

// NextStatuses returns the advisory follow-up statuses, nil for terminal or
// unknown statuses.
func NextStatuses(status string) []string {
	return nextStatuses[status]
}
