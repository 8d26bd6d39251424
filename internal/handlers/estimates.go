package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"mathmotion/internal/metrics"
	"mathmotion/internal/pricing"
	"mathmotion/internal/repository"
)

type EstimateHandler struct {
	estimateRepo *repository.EstimateRepository
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

func NewEstimateHandler(estimateRepo *repository.EstimateRepository, m *metrics.Metrics, logger *slog.Logger) *EstimateHandler {
	return &EstimateHandler{
		estimateRepo: estimateRepo,
		metrics:      m,
		logger:       logger.With("component", "estimates"),
	}
}

type estimateRequest struct {
	AnimationType   string  `json:"animation_type"`
	DurationSeconds int     `json:"duration_seconds"`
	Complexity      float64 `json:"complexity"`
	Currency        string  `json:"currency"`
	Email           string  `json:"email"`
}

type estimateResponse struct {
	ID         int64  `json:"id,omitempty"`
	PriceMinor int64  `json:"price_minor"`
	Display    string `json:"display"`
	Currency   string `json:"currency"`
	Persisted  bool   `json:"persisted"`
}

// Create computes a quick estimate and records it as a lead-capture row.
// The record is best-effort: a failed insert is logged and counted, and the
// computed price is still returned as authoritative.
func (h *EstimateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	category := pricing.Category(req.AnimationType)
	currency := pricing.Currency(strings.ToUpper(req.Currency))

	if err := pricing.ValidateQuickEstimate(category, req.DurationSeconds, req.Complexity, currency); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	priceMinor, err := pricing.EstimateMinor(category, req.DurationSeconds, req.Complexity, currency)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.metrics.EstimatesComputed.WithLabelValues(string(category), string(currency)).Inc()

	resp := estimateResponse{
		PriceMinor: priceMinor,
		Display:    pricing.FormatCurrency(priceMinor, currency),
		Currency:   string(currency),
	}

	est, err := h.estimateRepo.Create(string(category), req.DurationSeconds, req.Complexity, string(currency), priceMinor, strings.TrimSpace(req.Email))
	if err != nil {
		// Fail quiet: the lead-capture write never blocks the price.
		h.logger.Warn("quick estimate persistence failed", "error", err)
		h.metrics.Errors.WithLabelValues("estimates").Inc()
	} else {
		resp.ID = est.ID
		resp.Persisted = true
	}

	writeJSON(w, http.StatusOK, resp)
}
