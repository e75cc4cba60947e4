package model

import "time"

// UserProfile is the stored per-user autofill profile. ProfileData is the flat
// profile record itself, never a wrapper around another profile_data object.
type UserProfile struct {
	Email       string                 `json:"email"`
	ProfileData map[string]interface{} `json:"profileData"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

// Feedback is a single tracked feedback interaction from the extension overlay
type Feedback struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FeedbackType string    `json:"feedbackType"`
	CreatedAt    time.Time `json:"createdAt"`
}
