package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScoringRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_scoring_requests_total",
			Help: "Total number of remote scoring calls by outcome",
		},
		[]string{"outcome"},
	)

	ScoringDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "loan_scoring_duration_seconds",
			Help:    "Duration of remote scoring calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_scoring_cache_lookups_total",
			Help: "Scoring cache lookups by result",
		},
		[]string{"result"},
	)

	EmailDrafts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_email_drafts_total",
			Help: "Drafted decision emails by decision and outcome",
		},
		[]string{"decision", "outcome"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "loan_sessions_active",
			Help: "Number of in-memory sessions currently held",
		},
	)
)
