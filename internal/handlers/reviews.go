package handlers

import (
	"net/http"

	"mathmotion/internal/repository"
)

type ReviewHandler struct {
	reviewRepo *repository.ReviewRepository
}

func NewReviewHandler(reviewRepo *repository.ReviewRepository) *ReviewHandler {
	return &ReviewHandler{reviewRepo: reviewRepo}
}

// ListApproved serves the public testimonials wall. Only approved entries
// are visible outside the admin console.
func (h *ReviewHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviewRepo.ListApproved()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load testimonials")
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}
