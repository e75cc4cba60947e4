package service

import (
	"context"
	"errors"
	"fmt"

	"autofill-api/internal/logger"
	"autofill-api/internal/model"
	"autofill-api/internal/repository"
)

// ErrEmailRequired rejects a profile operation with no email
var ErrEmailRequired = errors.New("email required")

// ProfileService stores and fetches user autofill profiles. The stored shape
// is always the flat profile record; legacy double-wrapped payloads are
// flattened at the write boundary so reads never need an unwrap step.
type ProfileService struct {
	profileRepo repository.ProfileRepo
	log         *logger.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(profileRepo repository.ProfileRepo, log *logger.Logger) *ProfileService {
	return &ProfileService{profileRepo: profileRepo, log: log}
}

// Save upserts a user's profile keyed on email
func (s *ProfileService) Save(ctx context.Context, email string, profileData map[string]interface{}) error {
	if email == "" {
		return ErrEmailRequired
	}

	// Older clients wrapped the record in a profile_data envelope; unwrap once
	// here so only the flat record is ever stored.
	if inner, ok := profileData["profile_data"].(map[string]interface{}); ok {
		profileData = inner
	}

	if err := s.profileRepo.Upsert(ctx, email, profileData); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Get returns a user's profile, or nil when none exists
func (s *ProfileService) Get(ctx context.Context, email string) (*model.UserProfile, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}
	profile, err := s.profileRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}
