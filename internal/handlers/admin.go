package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mathmotion/internal/metrics"
	"mathmotion/internal/models"
	"mathmotion/internal/pricing"
	"mathmotion/internal/repository"
	"mathmotion/internal/storage"

	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	projectRepo      *repository.ProjectRepository
	userRepo         *repository.UserRepository
	adminRepo        *repository.AdminRepository
	contractRepo     *repository.ContractRepository
	reviewRepo       *repository.ReviewRepository
	estimateRepo     *repository.EstimateRepository
	settingsRepo     *repository.SettingsRepository
	notificationRepo *repository.NotificationRepository
	store            *storage.Store
	metrics          *metrics.Metrics
	logger           *slog.Logger
}

func NewAdminHandler(
	projectRepo *repository.ProjectRepository,
	userRepo *repository.UserRepository,
	adminRepo *repository.AdminRepository,
	contractRepo *repository.ContractRepository,
	reviewRepo *repository.ReviewRepository,
	estimateRepo *repository.EstimateRepository,
	settingsRepo *repository.SettingsRepository,
	notificationRepo *repository.NotificationRepository,
	store *storage.Store,
	m *metrics.Metrics,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		projectRepo:      projectRepo,
		userRepo:         userRepo,
		adminRepo:        adminRepo,
		contractRepo:     contractRepo,
		reviewRepo:       reviewRepo,
		estimateRepo:     estimateRepo,
		settingsRepo:     settingsRepo,
		notificationRepo: notificationRepo,
		store:            store,
		metrics:          m,
		logger:           logger.With("component", "admin"),
	}
}

// adminProjectView adds the advisory next-status suggestions to the client
// view. Suggestions are not enforced: any status can be set at any time.
type adminProjectView struct {
	projectView
	NextStatuses []string `json:"next_statuses"`
}

func newAdminProjectView(p models.Project) adminProjectView {
	return adminProjectView{
		projectView:  newProjectView(p),
		NextStatuses: pricing.NextStatuses(p.Status),
	}
}

// --- Projects ---

func (h *AdminHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectRepo.ListAll(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load projects")
		return
	}

	views := make([]adminProjectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, newAdminProjectView(p))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *AdminHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newAdminProjectView(*project))
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// UpdateStatus sets any known status. Mutations return the fresh row so the
// console can reconcile its local copy against it.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	var req statusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !pricing.KnownStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	updated, err := h.projectRepo.UpdateStatus(project.ID, req.Status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not update status")
		return
	}

	h.notifyStatusChange(r, updated)
	writeJSON(w, http.StatusOK, newAdminProjectView(*updated))
}

type finalPriceRequest struct {
	// FinalPrice is entered in whole currency units; it is stored in minor
	// units for consistency with display formatting.
	FinalPrice int64 `json:"final_price"`
}

func (h *AdminHandler) SetFinalPrice(w http.ResponseWriter, r *http.Request) {
	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	var req finalPriceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.FinalPrice < 0 {
		writeError(w, http.StatusBadRequest, "price must not be negative")
		return
	}

	updated, err := h.projectRepo.SetFinalPrice(project.ID, req.FinalPrice*100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not set price")
		return
	}
	writeJSON(w, http.StatusOK, newAdminProjectView(*updated))
}

type notesRequest struct {
	Notes string `json:"notes"`
}

func (h *AdminHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	var req notesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.projectRepo.UpdateNotes(project.ID, req.Notes); err != nil {
		writeError(w, http.StatusInternalServerError, "could not update notes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type assignRequest struct {
	AdminID *int64 `json:"admin_id"`
}

func (h *AdminHandler) Assign(w http.ResponseWriter, r *http.Request) {
	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	var req assignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.AdminID != nil {
		if _, err := h.adminRepo.GetByID(*req.AdminID); err != nil {
			writeError(w, http.StatusBadRequest, "unknown team member")
			return
		}
	}

	if err := h.projectRepo.Assign(project.ID, req.AdminID); err != nil {
		writeError(w, http.StatusInternalServerError, "could not assign project")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Deliverables ---

// UploadDeliverable stores the file, records it, points the project at it
// and flips the status to completed.
func (h *AdminHandler) UploadDeliverable(w http.ResponseWriter, r *http.Request) {
	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	key, err := h.store.Save(project.ID, header.Filename, file, header.Size)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.projectRepo.AddFile(project.ID, key, header.Filename, header.Size)
	if err != nil {
		// Orphaned files are cleaned up by the janitor; remove eagerly anyway.
		if rmErr := h.store.Remove(key); rmErr != nil {
			h.logger.Warn("could not remove orphaned upload", "key", key, "error", rmErr)
		}
		writeError(w, http.StatusInternalServerError, "could not record file")
		return
	}

	if err := h.projectRepo.SetDeliverable(project.ID, &key); err != nil {
		writeError(w, http.StatusInternalServerError, "could not set deliverable")
		return
	}
	updated, err := h.projectRepo.UpdateStatus(project.ID, models.StatusCompleted)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not update status")
		return
	}

	h.metrics.DeliverableBytes.Add(float64(header.Size))
	h.notifyStatusChange(r, updated)

	writeJSON(w, http.StatusCreated, map[string]any{
		"file":    record,
		"project": newAdminProjectView(*updated),
	})
}

type fileView struct {
	models.ProjectFile
	PreviewURL string `json:"preview_url"`
	Current    bool   `json:"current"`
}

func (h *AdminHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	files, err := h.projectRepo.ListFiles(project.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list files")
		return
	}

	now := time.Now()
	views := make([]fileView, 0, len(files))
	for _, f := range files {
		views = append(views, fileView{
			ProjectFile: f,
			PreviewURL:  h.store.SignURL(f.FilePath, now),
			Current:     project.DeliverablePath != nil && *project.DeliverablePath == f.FilePath,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

// SetCurrentFile re-points the deliverable at a historical file without
// re-uploading.
func (h *AdminHandler) SetCurrentFile(w http.ResponseWriter, r *http.Request) {
	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	file, ok := h.loadProjectFile(w, r, project.ID)
	if !ok {
		return
	}

	if err := h.projectRepo.SetDeliverable(project.ID, &file.FilePath); err != nil {
		writeError(w, http.StatusInternalServerError, "could not set deliverable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "current": file.FilePath})
}

// DeleteFile removes a stored file, clearing the deliverable pointer when
// the deleted file was current.
func (h *AdminHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	file, ok := h.loadProjectFile(w, r, project.ID)
	if !ok {
		return
	}

	if err := h.projectRepo.DeleteFile(file.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "could not delete file")
		return
	}
	if err := h.store.Remove(file.FilePath); err != nil {
		h.logger.Warn("could not remove stored file", "key", file.FilePath, "error", err)
	}

	if project.DeliverablePath != nil && *project.DeliverablePath == file.FilePath {
		if err := h.projectRepo.SetDeliverable(project.ID, nil); err != nil {
			writeError(w, http.StatusInternalServerError, "could not clear deliverable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Clients ---

func (h *AdminHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.userRepo.ListProfiles()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load clients")
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

// --- Payments ---

// ListPayments surfaces projects awaiting payment together with the stored
// payment configuration.
func (h *AdminHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectRepo.ListAll(models.StatusPaymentPending)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load payments")
		return
	}

	settings, err := h.settingsRepo.GetAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load payment settings")
		return
	}

	views := make([]adminProjectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, newAdminProjectView(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pending":  views,
		"settings": settings,
	})
}

// --- Contracts ---

func (h *AdminHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.contractRepo.List(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load contract requests")
		return
	}
	writeJSON(w, http.StatusOK, contracts)
}

var contractStatuses = map[string]bool{
	models.ContractStatusNew:      true,
	models.ContractStatusReview:   true,
	models.ContractStatusApproved: true,
	models.ContractStatusRejected: true,
}

func (h *AdminHandler) UpdateContractStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req statusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !contractStatuses[req.Status] {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	contract, err := h.contractRepo.UpdateStatus(id, req.Status)
	if err != nil {
		writeError(w, http.StatusNotFound, "contract request not found")
		return
	}
	writeJSON(w, http.StatusOK, contract)
}

// --- Testimonials ---

type reviewRequest struct {
	ProjectID    *int64   `json:"project_id"`
	UserID       *int64   `json:"user_id"`
	Quote        string   `json:"quote"`
	Author       string   `json:"author"`
	Role         string   `json:"role"`
	Organization string   `json:"organization"`
	Link         string   `json:"link"`
	Topics       []string `json:"topics"`
	Rating       int      `json:"rating"`
}

func (req reviewRequest) validate() string {
	if strings.TrimSpace(req.Quote) == "" {
		return "quote is required"
	}
	if strings.TrimSpace(req.Author) == "" {
		return "author is required"
	}
	if req.Rating < 1 || req.Rating > 5 {
		return "rating must be between 1 and 5"
	}
	return ""
}

func (req reviewRequest) params() repository.ReviewParams {
	return repository.ReviewParams{
		ProjectID:    req.ProjectID,
		UserID:       req.UserID,
		Quote:        req.Quote,
		Author:       req.Author,
		Role:         req.Role,
		Organization: req.Organization,
		Link:         req.Link,
		Topics:       req.Topics,
		Rating:       req.Rating,
	}
}

func (h *AdminHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviewRepo.ListAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load testimonials")
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *AdminHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	review, err := h.reviewRepo.Create(req.params())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create testimonial")
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (h *AdminHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	review, err := h.reviewRepo.Update(id, req.params())
	if err != nil {
		writeError(w, http.StatusNotFound, "testimonial not found")
		return
	}
	writeJSON(w, http.StatusOK, review)
}

type flagRequest struct {
	Value bool `json:"value"`
}

func (h *AdminHandler) SetReviewApproved(w http.ResponseWriter, r *http.Request) {
	h.setReviewFlag(w, r, h.reviewRepo.SetApproved)
}

func (h *AdminHandler) SetReviewVerified(w http.ResponseWriter, r *http.Request) {
	h.setReviewFlag(w, r, h.reviewRepo.SetVerified)
}

func (h *AdminHandler) setReviewFlag(w http.ResponseWriter, r *http.Request, set func(int64, bool) error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req flagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := set(id, req.Value); err != nil {
		writeError(w, http.StatusInternalServerError, "could not update testimonial")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AdminHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.reviewRepo.Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "could not delete testimonial")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Team ---

func (h *AdminHandler) ListTeam(w http.ResponseWriter, r *http.Request) {
	admins, err := h.adminRepo.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load team")
		return
	}
	writeJSON(w, http.StatusOK, admins)
}

func (h *AdminHandler) CreateTeamMember(w http.ResponseWriter, r *http.Request) {
	var req adminSetupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "username and email are required")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	admin, err := h.adminRepo.Create(req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create team member")
		return
	}
	writeJSON(w, http.StatusCreated, admin)
}

func (h *AdminHandler) SetTeamMemberActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req flagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.adminRepo.SetActive(id, req.Value); err != nil {
		writeError(w, http.StatusInternalServerError, "could not update team member")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Estimates ---

func (h *AdminHandler) ListEstimates(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	estimates, err := h.estimateRepo.ListRecent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load estimates")
		return
	}
	writeJSON(w, http.StatusOK, estimates)
}

// --- Settings ---

func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsRepo.GetAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *AdminHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	for key, value := range req {
		if err := h.settingsRepo.Set(key, value); err != nil {
			writeError(w, http.StatusInternalServerError, "could not save settings")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- helpers ---

func (h *AdminHandler) loadProject(w http.ResponseWriter, r *http.Request) (*models.Project, bool) {
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
	return project, true
}

func (h *AdminHandler) loadProjectFile(w http.ResponseWriter, r *http.Request, projectID int64) (*models.ProjectFile, bool) {
	fileID, err := strconv.ParseInt(chi.URLParam(r, "fileId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file id")
		return nil, false
	}

	file, err := h.projectRepo.GetFile(fileID)
	if err != nil || file.ProjectID != projectID {
		writeError(w, http.StatusNotFound, "file not found")
		return nil, false
	}
	return file, true
}

// notifyStatusChange drops a best-effort dashboard notification for the
// project owner.
func (h *AdminHandler) notifyStatusChange(r *http.Request, p *models.Project) {
	info := pricing.StatusOf(p.Status)
	_, err := h.notificationRepo.Create(p.UserID,
		"Project update: "+p.Title,
		"Status changed to "+info.Label)
	if err != nil {
		h.logger.Warn("could not create notification", "project_id", p.ID, "error", err)
		h.metrics.Errors.WithLabelValues("notifications").Inc()
	}
}
