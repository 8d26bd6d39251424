package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mathmotion/internal/metrics"
	authmw "mathmotion/internal/middleware"
	"mathmotion/internal/pricing"
	"mathmotion/internal/repository"
)

// allowedDurations is the discrete duration choice set of the request form.
var allowedDurations = map[int]bool{
	5: true, 10: true, 15: true, 30: true, 60: true, 120: true, 300: true,
}

const (
	firstStep = 1
	lastStep  = 4
)

type RequestHandler struct {
	projectRepo *repository.ProjectRepository
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewRequestHandler(projectRepo *repository.ProjectRepository, m *metrics.Metrics, logger *slog.Logger) *RequestHandler {
	return &RequestHandler{
		projectRepo: projectRepo,
		metrics:     m,
		logger:      logger.With("component", "requests"),
	}
}

// requestIntake is the full multi-step brief. Individual steps validate a
// subset; final submission validates everything.
type requestIntake struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	AnimationType    string `json:"animation_type"`
	DurationSeconds  *int   `json:"duration_seconds"`
	ScriptContent    string `json:"script_content"`
	StylePreferences string `json:"style_preferences"`
	BudgetMin        *int   `json:"budget_min"`
	BudgetMax        *int   `json:"budget_max"`
	Budget           string `json:"budget"`
	Deadline         string `json:"deadline"`
	Currency         string `json:"currency"`
}

// budgetRange resolves the brief's budget. Explicit min/max win; otherwise a
// free-form range like "$50-$200" is parsed, with currency defaults for
// anything unparseable.
func budgetRange(in requestIntake, currency pricing.Currency) (*int, *int) {
	if in.BudgetMin != nil || in.BudgetMax != nil {
		return in.BudgetMin, in.BudgetMax
	}
	if strings.TrimSpace(in.Budget) == "" {
		return nil, nil
	}
	min, max := pricing.ParseBudgetRange(in.Budget, currency)
	return &min, &max
}

// validateStep returns the field errors blocking forward navigation past the
// given step. Backward navigation is never validated.
func validateStep(step int, in requestIntake) []string {
	var errs []string
	switch step {
	case 1:
		if strings.TrimSpace(in.Title) == "" {
			errs = append(errs, "title is required")
		}
		if strings.TrimSpace(in.Description) == "" {
			errs = append(errs, "description is required")
		}
	case 2:
		if !pricing.ValidCategory(pricing.Category(in.AnimationType)) {
			errs = append(errs, "animation type is required")
		}
		if in.DurationSeconds != nil && !allowedDurations[*in.DurationSeconds] {
			errs = append(errs, "duration must be one of 5, 10, 15, 30, 60, 120 or 300 seconds")
		}
	case 3:
		if strings.TrimSpace(in.ScriptContent) == "" {
			errs = append(errs, "script content is required")
		}
	case 4:
		if in.BudgetMin != nil && *in.BudgetMin < 0 {
			errs = append(errs, "budget must not be negative")
		}
		if in.BudgetMax != nil && *in.BudgetMax < 0 {
			errs = append(errs, "budget must not be negative")
		}
		if in.BudgetMin != nil && in.BudgetMax != nil && *in.BudgetMin > *in.BudgetMax {
			errs = append(errs, "minimum budget exceeds maximum")
		}
		if in.Deadline != "" {
			if _, err := time.Parse("2006-01-02", in.Deadline); err != nil {
				errs = append(errs, "deadline must be a date (YYYY-MM-DD)")
			}
		}
	}
	return errs
}

func validateAll(in requestIntake) []string {
	var errs []string
	for step := firstStep; step <= lastStep; step++ {
		errs = append(errs, validateStep(step, in)...)
	}
	return errs
}

type validateRequest struct {
	Step int `json:"step"`
	requestIntake
}

// Validate checks a single step boundary so the form can gate forward
// navigation server-side.
func (h *RequestHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Step < firstStep || req.Step > lastStep {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("step must be between %d and %d", firstStep, lastStep))
		return
	}

	errs := validateStep(req.Step, req.requestIntake)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     len(errs) == 0,
		"errors": errs,
	})
}

// Submit persists the full brief as a new project owned by the signed-in
// user. A failed submit persists nothing; the client keeps its form state
// and retries.
func (h *RequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req requestIntake
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if errs := validateAll(req); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "errors": errs})
		return
	}

	currency := pricing.Currency(strings.ToUpper(req.Currency))
	if !pricing.ValidCurrency(currency) {
		currency = pricing.USD
	}

	params := repository.ProjectParams{
		UserID:           authmw.GetUserID(r.Context()),
		Title:            strings.TrimSpace(req.Title),
		Description:      strings.TrimSpace(req.Description),
		AnimationType:    req.AnimationType,
		DurationSeconds:  req.DurationSeconds,
		StylePreferences: req.StylePreferences,
		ScriptContent:    req.ScriptContent,
		Currency:         string(currency),
	}
	params.BudgetMin, params.BudgetMax = budgetRange(req, currency)

	if req.Deadline != "" {
		deadline, _ := time.Parse("2006-01-02", req.Deadline)
		params.Deadline = &deadline
	}

	if req.DurationSeconds != nil {
		if price, err := pricing.EstimateMinor(pricing.Category(req.AnimationType), *req.DurationSeconds, 1.0, currency); err == nil {
			params.EstimatedPriceMinor = &price
		}
	}

	project, err := h.projectRepo.Create(params)
	if err != nil {
		h.logger.Error("project submission failed", "user_id", params.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not submit request, please try again")
		return
	}

	h.metrics.ProjectsSubmitted.Inc()
	writeJSON(w, http.StatusCreated, project)
}
