package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile represents the operator settings kept in the profiles table.
type Profile struct {
	ID                  uuid.UUID `json:"id"` // Same as the auth user id
	Services            []string  `json:"services"`
	Credits             int       `json:"credits"`
	OnboardingCompleted bool      `json:"onboarding_completed"`
	UpdatedAt           time.Time `json:"updated_at"`
}
