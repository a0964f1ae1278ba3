package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for FeedFetches.
const (
	OutcomeOK        = "ok"
	OutcomeTransport = "transport_error"
	OutcomeStatus    = "bad_status"
	OutcomeEmpty     = "empty_body"
	OutcomeParse     = "parse_error"
	OutcomeStructure = "invalid_structure"
)

var (
	FeedFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_feed_fetches_total",
		Help: "Feed fetches by source kind and outcome",
	}, []string{"source", "outcome"})

	FeedFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gallery_feed_fetch_duration_seconds",
		Help:    "Time spent fetching and parsing a feed",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
	}, []string{"source"})

	PlaceholderFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_placeholder_fallbacks_total",
		Help: "Operations that returned placeholder content instead of feed data",
	}, []string{"operation"})

	EntryTransformErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gallery_entry_transform_errors_total",
		Help: "Feed entries replaced by an error entry during normalization",
	})

	EnrichmentErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gallery_enrichment_errors_total",
		Help: "Failed YouTube Data API enrichment calls",
	})
)
