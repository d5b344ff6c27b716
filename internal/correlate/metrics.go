package correlate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stashwatch_correlator_events_total",
			Help: "Access events evaluated by the correlator, by outcome.",
		},
		[]string{"outcome"},
	)
	queryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stashwatch_correlator_query_duration_seconds",
			Help:    "Duration of targeted attribution queries.",
			Buckets: prometheus.DefBuckets,
		},
	)
)
