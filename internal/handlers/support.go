package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"mathmotion/internal/metrics"
	authmw "mathmotion/internal/middleware"
	"mathmotion/internal/repository"

	"github.com/go-chi/chi/v5"
)

const maxMessageLength = 4000

type SupportHandler struct {
	messageRepo      *repository.MessageRepository
	notificationRepo *repository.NotificationRepository
	metrics          *metrics.Metrics
	logger           *slog.Logger
}

func NewSupportHandler(messageRepo *repository.MessageRepository, notificationRepo *repository.NotificationRepository, m *metrics.Metrics, logger *slog.Logger) *SupportHandler {
	return &SupportHandler{
		messageRepo:      messageRepo,
		notificationRepo: notificationRepo,
		metrics:          m,
		logger:           logger.With("component", "support"),
	}
}

// ListMessages returns the caller's thread. Passing ?after=<id> fetches only
// messages newer than that id, so clients can poll without re-downloading the
// whole thread.
func (h *SupportHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID := authmw.GetUserID(r.Context())

	afterID, _ := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)
	messages, err := h.messageRepo.ListThread(userID, afterID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load messages")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

type messageRequest struct {
	Content string `json:"content"`
}

func (h *SupportHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := authmw.GetUserID(r.Context())

	content, ok := h.readContent(w, r)
	if !ok {
		return
	}

	message, err := h.messageRepo.Append(userID, userID, false, content)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not send message")
		return
	}

	h.metrics.MessagesSent.WithLabelValues("client").Inc()
	writeJSON(w, http.StatusCreated, message)
}

// ListThreads is the admin inbox: one summary row per client thread, newest
// activity first.
func (h *SupportHandler) ListThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := h.messageRepo.Threads()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load threads")
		return
	}
	writeJSON(w, http.StatusOK, threads)
}

func (h *SupportHandler) GetThread(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	afterID, _ := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)
	messages, err := h.messageRepo.ListThread(userID, afterID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load thread")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *SupportHandler) Reply(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	adminID := authmw.GetAdminID(r.Context())

	content, ok := h.readContent(w, r)
	if !ok {
		return
	}

	message, err := h.messageRepo.Append(userID, adminID, true, content)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not send reply")
		return
	}

	if _, err := h.notificationRepo.Create(userID, "New support reply", truncate(content, 140)); err != nil {
		h.logger.Warn("could not create notification", "user_id", userID, "error", err)
		h.metrics.Errors.WithLabelValues("notifications").Inc()
	}

	h.metrics.MessagesSent.WithLabelValues("admin").Inc()
	writeJSON(w, http.StatusCreated, message)
}

func (h *SupportHandler) readContent(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		writeError(w, http.StatusBadRequest, "message must not be empty")
		return "", false
	}
	if len(content) > maxMessageLength {
		writeError(w, http.StatusBadRequest, "message is too long")
		return "", false
	}
	return content, true
}

// truncate cuts at most n bytes, backing off to a rune boundary so the
// result stays valid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}
