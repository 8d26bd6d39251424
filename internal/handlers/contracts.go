package handlers

import (
	"net/http"
	"strings"
	"time"

	"mathmotion/internal/pricing"
	"mathmotion/internal/repository"
)

var contractPlans = map[string]bool{
	"starter":    true,
	"research":   true,
	"enterprise": true,
	"custom":     true,
}

type ContractHandler struct {
	contractRepo *repository.ContractRepository
}

func NewContractHandler(contractRepo *repository.ContractRepository) *ContractHandler {
	return &ContractHandler{contractRepo: contractRepo}
}

type contractRequest struct {
	Email          string `json:"email"`
	ContactName    string `json:"contact_name"`
	Organization   string `json:"organization"`
	Plan           string `json:"plan"`
	Currency       string `json:"currency"`
	MonthlyBudget  *int   `json:"monthly_budget"`
	Timeframe      string `json:"timeframe"`
	PreferredStart string `json:"preferred_start"`
	Description    string `json:"description"`
}

// Create accepts a public institutional inquiry. No account is required.
func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req contractRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.ContactName = strings.TrimSpace(req.ContactName)
	req.Plan = strings.ToLower(strings.TrimSpace(req.Plan))

	if req.ContactName == "" {
		writeError(w, http.StatusBadRequest, "contact name is required")
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if !contractPlans[req.Plan] {
		writeError(w, http.StatusBadRequest, "unknown plan")
		return
	}

	currency := pricing.Currency(strings.ToUpper(req.Currency))
	if !pricing.ValidCurrency(currency) {
		currency = pricing.USD
	}
	if req.MonthlyBudget != nil && *req.MonthlyBudget < 0 {
		writeError(w, http.StatusBadRequest, "budget must not be negative")
		return
	}

	var start *time.Time
	if req.PreferredStart != "" {
		t, err := time.Parse("2006-01-02", req.PreferredStart)
		if err != nil {
			writeError(w, http.StatusBadRequest, "preferred start must be YYYY-MM-DD")
			return
		}
		start = &t
	}

	contract, err := h.contractRepo.Create(repository.ContractParams{
		Email:          req.Email,
		ContactName:    req.ContactName,
		Organization:   strings.TrimSpace(req.Organization),
		Plan:           req.Plan,
		Currency:       string(currency),
		MonthlyBudget:  req.MonthlyBudget,
		Timeframe:      strings.TrimSpace(req.Timeframe),
		PreferredStart: start,
		Description:    strings.TrimSpace(req.Description),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not save inquiry")
		return
	}
	writeJSON(w, http.StatusCreated, contract)
}
