package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tracks market-data uploads by outcome.
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricer_market_data_uploads_total",
			Help: "Total number of market data upload requests (by result).",
		},
		[]string{"result"}, // result = "ok" | "invalid" | "error"
	)

	// Tracks option valuation requests by outcome.
	PricingRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricer_option_pricing_requests_total",
			Help: "Total number of option pricing requests (by result).",
		},
		[]string{"result"},
	)

	// Measures duration of outbound calendar API requests.
	CalendarRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricer_calendar_request_duration_seconds",
			Help:    "Duration of trading-calendar API requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"exchange"},
	)

	// Tracks cache hits and misses for trading-day lookups.
	CalendarCacheAccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricer_calendar_cache_access_total",
			Help: "Number of cache hits/misses for trading-day lookups.",
		},
		[]string{"result"}, // hit | miss
	)

	// Tracks NATS messages published by subject and result.
	NATSMessageCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricer_nats_messages_total",
			Help: "Total number of NATS messages published.",
		},
		[]string{"subject", "result"}, // result = "ok" | "error"
	)

	NATSMessageLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricer_nats_message_latency_seconds",
			Help:    "Time taken to publish NATS messages.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"subject"},
	)

	// Tracks total errors by component.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricer_errors_total",
			Help: "Total number of errors by component and reason.",
		},
		[]string{"component", "reason"},
	)
)

func IncUpload(result string) {
	UploadsTotal.WithLabelValues(result).Inc()
}

func IncPricing(result string) {
	PricingRequestsTotal.WithLabelValues(result).Inc()
}

func IncCalendarCache(result string) {
	CalendarCacheAccess.WithLabelValues(result).Inc()
}

func IncNATSMessage(subject, result string) {
	NATSMessageCount.WithLabelValues(subject, result).Inc()
}

func IncError(component, reason string) {
	ErrorsTotal.WithLabelValues(component, reason).Inc()
}

func ObserveDuration(vec *prometheus.HistogramVec, start time.Time, labels ...string) {
	vec.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
}
