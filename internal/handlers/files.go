package handlers

import (
	"log/slog"
	"net/http"
	"path"
	"time"

	"mathmotion/internal/storage"

	"github.com/go-chi/chi/v5"
)

type FileHandler struct {
	store  *storage.Store
	logger *slog.Logger
}

func NewFileHandler(store *storage.Store, logger *slog.Logger) *FileHandler {
	return &FileHandler{store: store, logger: logger.With("component", "files")}
}

// Serve streams a stored file. The URL must carry a valid, unexpired
// signature produced by SignURL; there is no other way to reach the bytes.
func (h *FileHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	q := r.URL.Query()

	if err := h.store.VerifySignature(key, q.Get("expires"), q.Get("sig"), time.Now()); err != nil {
		writeError(w, http.StatusForbidden, "link is invalid or has expired")
		return
	}

	file, info, err := h.store.Open(key)
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	defer file.Close()

	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(key)+`"`)
	http.ServeContent(w, r, path.Base(key), info.ModTime(), file)
}
