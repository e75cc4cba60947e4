package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"autofill-api/internal/model"
	"autofill-api/internal/service"
)

// UserHandler handles user profile endpoints
type UserHandler struct {
	profileSvc *service.ProfileService
}

// NewUserHandler creates a new user handler
func NewUserHandler(profileSvc *service.ProfileService) *UserHandler {
	return &UserHandler{profileSvc: profileSvc}
}

// Save handles POST /api/user-data/save
func (h *UserHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req model.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.profileSvc.Save(r.Context(), req.Email, req.ProfileData)
	if errors.Is(err, service.ErrEmailRequired) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Profile saved",
	})
}

// Get handles GET /api/user-data/{email}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]

	profile, err := h.profileSvc.Get(r.Context(), email)
	if errors.Is(err, service.ErrEmailRequired) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"profile": profile.ProfileData,
	})
}
