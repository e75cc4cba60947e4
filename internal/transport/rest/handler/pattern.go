package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"autofill-api/internal/model"
	"autofill-api/internal/service"
)

// PatternHandler handles pattern management endpoints
type PatternHandler struct {
	patternSvc *service.PatternService
	matcherSvc *service.MatcherService
	statsSvc   *service.StatsService
}

// NewPatternHandler creates a new pattern handler
func NewPatternHandler(patternSvc *service.PatternService, matcherSvc *service.MatcherService, statsSvc *service.StatsService) *PatternHandler {
	return &PatternHandler{
		patternSvc: patternSvc,
		matcherSvc: matcherSvc,
		statsSvc:   statsSvc,
	}
}

// Upload handles POST /api/patterns/upload?email=
// The direct write path: no confidence gate, but still owner-scoped.
func (h *PatternHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var req model.PatternUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := r.URL.Query().Get("email")
	err := h.patternSvc.SavePattern(r.Context(), req.Pattern, email)
	if errors.Is(err, service.ErrOwnerRequired) || errors.Is(err, service.ErrEmptyAnswerMappings) {
		// Validation failure, not a server fault
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Pattern uploaded successfully",
	})
}

// Search handles GET /api/patterns/search?q=
func (h *PatternHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	matches := []model.Pattern{}
	if match := h.matcherSvc.Search(r.Context(), q, r.URL.Query().Get("email")); match != nil {
		matches = append(matches, match.Pattern)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"matches": matches,
	})
}

// Stats handles GET /api/patterns/stats
func (h *PatternHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   h.statsSvc.PatternStats(r.Context()),
	})
}

// Sync handles GET /api/patterns/sync
func (h *PatternHandler) Sync(w http.ResponseWriter, r *http.Request) {
	patterns := h.patternSvc.GlobalPatterns(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"patterns": patterns,
		"total":    len(patterns),
	})
}

// UserPatterns handles GET /api/patterns/user/{email}
func (h *PatternHandler) UserPatterns(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	patterns := h.patternSvc.UserPatterns(r.Context(), email)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"patterns": patterns,
		"total":    len(patterns),
	})
}
