package models

import (
	"time"

	"github.com/google/uuid"
)

// ReviewSnippet is a review as it travels between the source adapters, the
// function endpoints and the analyzer. Field names follow the wire format
// the browser client already speaks.
type ReviewSnippet struct {
	Text       string  `json:"text" validate:"required"`
	Rating     *int    `json:"rating"`     // 1-5, nil when unknown
	AuthorName *string `json:"authorName"` // never set by the extractor
}

// BusinessCandidate is a discovered business that has not been persisted yet.
type BusinessCandidate struct {
	Name        string          `json:"name"`
	Address     *string         `json:"address"`
	Phone       *string         `json:"phone"`
	Website     *string         `json:"website"`
	Rating      *float64        `json:"rating"`
	ReviewCount int             `json:"reviewCount"`
	Reviews     []ReviewSnippet `json:"reviews"`
}

// Business represents the structure of a row in the businesses table.
// Reviews and Analysis are populated by readers, never written with the row.
type Business struct {
	ID          uuid.UUID  `json:"id"`
	SearchID    uuid.UUID  `json:"search_id"`
	Name        string     `json:"name"`
	Address     *string    `json:"address,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Website     *string    `json:"website,omitempty"`
	Rating      *float64   `json:"rating,omitempty"` // Within [0,5] when present
	ReviewCount int        `json:"review_count"`
	DataSource  DataSource `json:"data_source"`
	CreatedAt   time.Time  `json:"created_at"`

	Reviews  []Review  `json:"reviews,omitempty"`
	Analysis *Analysis `json:"analysis,omitempty"`
}

// NewBusiness builds the row for a candidate discovered by the given search.
func NewBusiness(searchID uuid.UUID, c BusinessCandidate, source DataSource) Business {
	b := Business{
		ID:          uuid.New(),
		SearchID:    searchID,
		Name:        c.Name,
		Address:     c.Address,
		Phone:       c.Phone,
		Website:     c.Website,
		Rating:      ClampRating(c.Rating),
		ReviewCount: c.ReviewCount,
		DataSource:  source,
	}
	return b
}

// ClampRating keeps an aggregate rating inside [0,5].
func ClampRating(r *float64) *float64 {
	if r == nil {
		return nil
	}
	v := *r
	if v < 0 {
		v = 0
	}
	if v > 5 {
		v = 5
	}
	return &v
}
