package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"autofill-api/internal/model"
	"autofill-api/internal/service"
)

// PredictHandler handles the prediction endpoint
type PredictHandler struct {
	autofillSvc *service.AutofillService
}

// NewPredictHandler creates a new predict handler
func NewPredictHandler(autofillSvc *service.AutofillService) *PredictHandler {
	return &PredictHandler{autofillSvc: autofillSvc}
}

// Predict handles POST /predict
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req model.PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	resp, err := h.autofillSvc.Predict(r.Context(), &req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
