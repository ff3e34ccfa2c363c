package source

import (
	"context"

	"github.com/sirupsen/logrus"

	"leadscout/internal/metrics"
	"leadscout/models"
)

// Fallback serves live data when the primary adapter produces any, and a
// synthetic batch otherwise. Its Fetch never returns an error.
type Fallback struct {
	primary   Adapter
	secondary *Synthetic
	log       logrus.FieldLogger
}

// NewFallback chains a primary adapter (may be nil) with the synthetic generator.
func NewFallback(primary Adapter, secondary *Synthetic, log logrus.FieldLogger) *Fallback {
	if secondary == nil {
		secondary = NewSynthetic(nil)
	}
	return &Fallback{primary: primary, secondary: secondary, log: log}
}

// Fetch implements Adapter.
func (f *Fallback) Fetch(ctx context.Context, businessType, location string, limit int) (Batch, error) {
	reason := "live source not configured"
	if f.primary != nil {
		batch, err := f.primary.Fetch(ctx, businessType, location, limit)
		switch {
		case err != nil:
			reason = err.Error()
			metrics.SourceFetches.WithLabelValues(string(models.DataSourceLive), "error").Inc()
		case len(batch.Candidates) == 0:
			reason = "live source returned no usable results"
			metrics.SourceFetches.WithLabelValues(string(models.DataSourceLive), "empty").Inc()
		default:
			metrics.SourceFetches.WithLabelValues(string(models.DataSourceLive), "ok").Inc()
			return batch, nil
		}
	}

	f.log.WithFields(logrus.Fields{
		"business_type": businessType,
		"location":      location,
		"reason":        reason,
	}).Warn("Falling back to synthetic business data")

	if limit <= 0 {
		limit = DefaultSyntheticCount
	}
	batch, _ := f.secondary.Fetch(ctx, businessType, location, limit)
	batch.FallbackReason = reason
	metrics.SourceFetches.WithLabelValues(string(models.DataSourceSynthetic), "ok").Inc()
	return batch, nil
}
