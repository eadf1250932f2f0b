package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// contentmesh metrics, exposed on /metrics/prometheus
var (
	// RoutingDecisions counts router decisions.
	// Labels: strategy, outcome: "selected", "empty"
	RoutingDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contentmesh",
			Name:      "routing_decisions_total",
			Help:      "Total routing decisions made by strategy",
		},
		[]string{"strategy", "outcome"},
	)

	// SourceQueries tracks source queries issued by the content pipeline.
	// Labels: source_type, status: "success", "error", "skipped"
	SourceQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contentmesh",
			Name:      "source_queries_total",
			Help:      "Total source queries by outcome",
		},
		[]string{"source_type", "status"},
	)

	SourceQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "contentmesh",
			Name:      "source_query_duration_seconds",
			Help:      "Source query latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source_type"},
	)

	// SynthesisQuality observes the quality score of every synthesis.
	SynthesisQuality = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "contentmesh",
			Name:      "synthesis_quality_score",
			Help:      "Mean relevance of synthesized content",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		},
	)

	Contradictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "contentmesh",
			Name:      "contradictions_total",
			Help:      "Total contradictions flagged between content blocks",
		},
	)

	// RegisteredSources is the current size of the source registry.
	RegisteredSources = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "contentmesh",
			Name:      "registered_sources",
			Help:      "Number of registered content sources",
		},
	)
)
