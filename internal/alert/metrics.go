package alert

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	webhookSendTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stashwatch_webhook_send_total",
			Help: "Total webhook alert deliveries by status.",
		},
		[]string{"status"},
	)
	webhookSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stashwatch_webhook_send_duration_seconds",
			Help:    "Duration of webhook alert HTTP requests.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)
	dispatchQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stashwatch_dispatch_queue_depth",
			Help: "Alerts waiting for webhook delivery.",
		},
	)
)
