package models

import (
	"time"

	"github.com/google/uuid"
)

// SearchStatus is the lifecycle state of a SearchJob. It only ever moves
// from processing to completed.
type SearchStatus string

const (
	SearchStatusProcessing SearchStatus = "processing"
	SearchStatusCompleted  SearchStatus = "completed"
)

// SearchJob represents the structure of a row in the searches table.
type SearchJob struct {
	ID           uuid.UUID    `json:"id"`
	UserID       uuid.UUID    `json:"user_id"`
	BusinessType string       `json:"business_type"`
	Location     string       `json:"location"`
	Radius       int          `json:"radius"`
	Status       SearchStatus `json:"status"`
	DataSource   *DataSource  `json:"data_source,omitempty"` // Set when the job completes
	Fingerprint  string       `json:"fingerprint,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
}

// IsCompleted reports whether the job reached its terminal state.
func (s SearchJob) IsCompleted() bool {
	return s.Status == SearchStatusCompleted
}
