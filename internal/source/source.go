// Package source discovers business candidates, either from the live search
// provider or from the synthetic generator, behind one Adapter contract.
package source

import (
	"context"
	"errors"

	"leadscout/models"
)

var (
	// ErrNotConfigured is returned by the live source when no provider key is set.
	ErrNotConfigured = errors.New("firecrawl connector not configured")
	// ErrProviderFailed wraps a failed primary provider request.
	ErrProviderFailed = errors.New("search provider request failed")
)

// Batch is the output of an Adapter. Source is the discriminant telling live
// leads apart from synthetic placeholders.
type Batch struct {
	Source     models.DataSource
	Candidates []models.BusinessCandidate
	// FallbackReason is set when synthetic data stands in for a live batch.
	FallbackReason string
}

// IsSynthetic reports whether the batch holds generated data.
func (b Batch) IsSynthetic() bool {
	return b.Source == models.DataSourceSynthetic
}

// Adapter fetches up to limit candidates for a business type and location.
type Adapter interface {
	Fetch(ctx context.Context, businessType, location string, limit int) (Batch, error)
}
