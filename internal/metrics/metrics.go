package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_searches_total",
			Help: "Total number of searches that reached completion, by data source",
		},
		[]string{"data_source"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "leadscout_search_duration_seconds",
			Help:    "Duration of a search pipeline run in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	AnalysisFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_analysis_failures_total",
			Help: "Per-business analysis failures tolerated by the pipeline",
		},
		[]string{"code"},
	)

	SourceFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_source_fetch_total",
			Help: "Business source fetches by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	AIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_ai_requests_total",
			Help: "Chat completion requests by purpose and outcome",
		},
		[]string{"purpose", "outcome"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_http_requests_total",
			Help: "HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leadscout_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	DispatcherQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leadscout_dispatcher_queue_depth",
			Help: "Search jobs waiting for a worker",
		},
	)
)
