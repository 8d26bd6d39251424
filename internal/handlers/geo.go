package handlers

import (
	"net/http"

	"mathmotion/internal/geo"
)

type GeoHandler struct {
	detector *geo.Detector
}

func NewGeoHandler(detector *geo.Detector) *GeoHandler {
	return &GeoHandler{detector: detector}
}

// Currency resolves the display currency for the caller. An explicit
// ?currency= override always wins over detection.
func (h *GeoHandler) Currency(w http.ResponseWriter, r *http.Request) {
	currency := h.detector.Detect(
		r.Context(),
		clientIP(r),
		r.Header.Get("Accept-Language"),
		r.URL.Query().Get("currency"),
	)
	writeJSON(w, http.StatusOK, map[string]string{"currency": string(currency)})
}
