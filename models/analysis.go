package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisResult is the verdict returned by the review analyzer.
type AnalysisResult struct {
	ProblemType     *string `json:"problemType"`
	UrgencyScore    int     `json:"urgencyScore"`
	Summary         string  `json:"summary"`
	OutreachMessage string  `json:"outreachMessage"`
}

// Analysis represents the structure of a row in the analyses table. There is
// at most one per business.
type Analysis struct {
	ID              uuid.UUID `json:"id"`
	BusinessID      uuid.UUID `json:"business_id"`
	ProblemType     *string   `json:"problem_type,omitempty"`
	UrgencyScore    *int      `json:"urgency_score,omitempty"` // 1-10 when present
	Summary         string    `json:"summary"`
	OutreachMessage string    `json:"outreach_message"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewAnalysis builds the row for a verdict about businessID.
func NewAnalysis(businessID uuid.UUID, r AnalysisResult) Analysis {
	a := Analysis{
		ID:              uuid.New(),
		BusinessID:      businessID,
		ProblemType:     r.ProblemType,
		Summary:         r.Summary,
		OutreachMessage: r.OutreachMessage,
	}
	if r.UrgencyScore >= 1 && r.UrgencyScore <= 10 {
		score := r.UrgencyScore
		a.UrgencyScore = &score
	}
	return a
}

// UrgencyBand groups urgency scores the way the lead filters do.
type UrgencyBand string

const (
	UrgencyHigh   UrgencyBand = "high"
	UrgencyMedium UrgencyBand = "medium"
	UrgencyLow    UrgencyBand = "low"
)

// Band reports the urgency band of the analysis, or "" when unscored.
func (a *Analysis) Band() UrgencyBand {
	if a == nil || a.UrgencyScore == nil {
		return ""
	}
	switch s := *a.UrgencyScore; {
	case s >= 7:
		return UrgencyHigh
	case s >= 4:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}
