package handlers

import (
	"net/http"
	"strconv"
	"time"

	authmw "mathmotion/internal/middleware"
	"mathmotion/internal/models"
	"mathmotion/internal/pricing"
	"mathmotion/internal/repository"
	"mathmotion/internal/storage"

	"github.com/go-chi/chi/v5"
)

type DashboardHandler struct {
	projectRepo      *repository.ProjectRepository
	estimateRepo     *repository.EstimateRepository
	userRepo         *repository.UserRepository
	notificationRepo *repository.NotificationRepository
	store            *storage.Store
}

func NewDashboardHandler(projectRepo *repository.ProjectRepository, estimateRepo *repository.EstimateRepository, userRepo *repository.UserRepository, notificationRepo *repository.NotificationRepository, store *storage.Store) *DashboardHandler {
	return &DashboardHandler{
		projectRepo:      projectRepo,
		estimateRepo:     estimateRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		store:            store,
	}
}

// projectView decorates a project with its status presentation and display
// price. The final price, once set, wins over the estimate.
type projectView struct {
	models.Project
	StatusInfo   pricing.StatusInfo `json:"status_info"`
	DisplayPrice string             `json:"display_price,omitempty"`
	Downloadable bool               `json:"downloadable"`
}

func newProjectView(p models.Project) projectView {
	v := projectView{
		Project:      p,
		StatusInfo:   pricing.StatusOf(p.Status),
		Downloadable: downloadable(p),
	}
	currency := pricing.Currency(p.Currency)
	if p.FinalPriceMinor != nil {
		v.DisplayPrice = pricing.FormatCurrency(*p.FinalPriceMinor, currency)
	} else if p.EstimatedPriceMinor != nil {
		v.DisplayPrice = pricing.FormatCurrency(*p.EstimatedPriceMinor, currency)
	}
	return v
}

// downloadable gates deliverable access: completed status and a deliverable
// present, nothing else.
func downloadable(p models.Project) bool {
	return p.Status == models.StatusCompleted && p.DeliverablePath != nil
}

func (h *DashboardHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	userID := authmw.GetUserID(r.Context())
	status := r.URL.Query().Get("status")

	projects, err := h.projectRepo.ListByUser(userID, status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load projects")
		return
	}

	views := make([]projectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, newProjectView(p))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *DashboardHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newProjectView(*project))
}

// ListEstimates returns quick estimates captured against the user's email.
func (h *DashboardHandler) ListEstimates(w http.ResponseWriter, r *http.Request) {
	user, err := h.userRepo.GetByID(authmw.GetUserID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load estimates")
		return
	}

	estimates, err := h.estimateRepo.ListByEmail(user.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load estimates")
		return
	}
	writeJSON(w, http.StatusOK, estimates)
}

func (h *DashboardHandler) Pin(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}
	if err := h.projectRepo.Pin(project.UserID, project.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "could not pin project")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"pinned": true})
}

func (h *DashboardHandler) Unpin(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}
	if err := h.projectRepo.Unpin(project.UserID, project.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "could not unpin project")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"pinned": false})
}

// Download hands out a short-lived signed URL for the current deliverable.
func (h *DashboardHandler) Download(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	if !downloadable(*project) {
		writeError(w, http.StatusConflict, "deliverable is not available yet")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"url":        h.store.SignURL(*project.DeliverablePath, time.Now()),
		"expires_in": int(storage.SignedURLTTL.Seconds()),
	})
}

func (h *DashboardHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notificationRepo.ListByUser(authmw.GetUserID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load notifications")
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (h *DashboardHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.notificationRepo.MarkRead(id, authmw.GetUserID(r.Context())); err != nil {
		writeError(w, http.StatusInternalServerError, "could not update notification")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *DashboardHandler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notificationRepo.MarkAllRead(authmw.GetUserID(r.Context())); err != nil {
		writeError(w, http.StatusInternalServerError, "could not update notifications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ownedProject loads the {id} project and enforces ownership.
func (h *DashboardHandler) ownedProject(w http.ResponseWriter, r *http.Request) (*models.Project, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	project, err := h.projectRepo.GetByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "project not found")
		return nil, false
	}
	if project.UserID != authmw.GetUserID(r.Context()) {
		writeError(w, http.StatusNotFound, "project not found")
		return nil, false
	}
	return project, true
}
