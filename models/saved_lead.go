package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LeadStatus is the CRM state of a saved lead.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
)

var leadTransitions = map[LeadStatus][]LeadStatus{
	LeadStatusNew:       {LeadStatusContacted},
	LeadStatusContacted: {LeadStatusNew},
}

// ParseLeadStatus validates a status string.
func ParseLeadStatus(s string) (LeadStatus, error) {
	switch LeadStatus(s) {
	case LeadStatusNew, LeadStatusContacted:
		return LeadStatus(s), nil
	}
	return "", fmt.Errorf("invalid lead status %q", s)
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Staying in the same status is always allowed.
func (s LeadStatus) CanTransitionTo(next LeadStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range leadTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SavedLead represents the structure of a row in the saved_leads table.
type SavedLead struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	BusinessID     uuid.UUID  `json:"business_id"`
	Status         LeadStatus `json:"status"`
	Notes          *string    `json:"notes,omitempty"`
	ColdCallScript *string    `json:"cold_call_script,omitempty"`
	ContactedAt    *time.Time `json:"contacted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Business *Business `json:"business,omitempty"`
}

// SetStatus applies a status change, maintaining ContactedAt.
func (l *SavedLead) SetStatus(next LeadStatus, now time.Time) error {
	if !l.Status.CanTransitionTo(next) {
		return fmt.Errorf("cannot move lead from %s to %s", l.Status, next)
	}
	if next == l.Status {
		return nil
	}
	l.Status = next
	if next == LeadStatusContacted {
		l.ContactedAt = &now
	} else {
		l.ContactedAt = nil
	}
	return nil
}
