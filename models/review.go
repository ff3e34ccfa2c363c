package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxReviewTextLength bounds stored review text, in characters.
const MaxReviewTextLength = 300

// Review represents the structure of a row in the reviews table. Rows are
// immutable once written.
type Review struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
	Text       string    `json:"text"`
	Rating     *int      `json:"rating,omitempty"`      // Nullable 1-5
	AuthorName *string   `json:"author_name,omitempty"` // Nullable TEXT
	CreatedAt  time.Time `json:"created_at"`
}

// NewReview converts a snippet into a row owned by businessID.
func NewReview(businessID uuid.UUID, s ReviewSnippet) Review {
	return Review{
		ID:         uuid.New(),
		BusinessID: businessID,
		Text:       TruncateText(s.Text, MaxReviewTextLength),
		Rating:     s.Rating,
		AuthorName: s.AuthorName,
	}
}

// Snippet converts a stored review back into its wire form.
func (r Review) Snippet() ReviewSnippet {
	return ReviewSnippet{Text: r.Text, Rating: r.Rating, AuthorName: r.AuthorName}
}

// TruncateText cuts s to at most max runes.
func TruncateText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
