package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LeadSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_submissions_total",
			Help: "Total number of lead submissions by result",
		},
		[]string{"result"},
	)

	SinkDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sink_deliveries_total",
			Help: "Total number of sink deliveries by sink and status",
		},
		[]string{"sink", "status"},
	)

	SinkRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sink_retries_total",
			Help: "Total number of sink delivery retry attempts",
		},
		[]string{"sink"},
	)

	RateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	DispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "sink_dispatch_duration_seconds",
			Help: "Duration of the full fan-out dispatch in seconds",
		},
	)

	EventsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracking_events_emitted_total",
			Help: "Total number of tracking events appended to the log",
		},
		[]string{"event"},
	)
)
