package handler

import (
	"net/http"

	"autofill-api/internal/service"
)

// StatsHandler handles summary stats and feedback tracking
type StatsHandler struct {
	statsSvc *service.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsSvc *service.StatsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc}
}

// Summary handles GET /api/stats/summary. It always answers 200; counts the
// store can't provide come back as zero.
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	stats := h.statsSvc.Summary(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"users":    stats.Users,
		"feedback": stats.Feedback,
	})
}

// TrackFeedback handles POST /api/feedback/track?email=&type=
func (h *StatsHandler) TrackFeedback(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'email' is required")
		return
	}

	err := h.statsSvc.TrackFeedback(r.Context(), email, r.URL.Query().Get("type"))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": err == nil,
	})
}
