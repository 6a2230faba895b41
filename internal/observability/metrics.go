package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tripbay", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tripbay", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tripbay", Name: "external_requests_total", Help: "Outbound edge-function requests."},
		[]string{"function", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tripbay", Name: "external_request_duration_seconds",
			Help:    "Outbound edge-function request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"function"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tripbay", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	BookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tripbay", Name: "bookings_created_total", Help: "Confirmed bookings by payment strategy."},
		[]string{"strategy"},
	)
	PaymentOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tripbay", Name: "payment_outcomes_total", Help: "Payment attempt outcomes."},
		[]string{"strategy", "outcome"}, // outcome: success|failure|cancelled
	)
	NotificationOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tripbay", Name: "notification_outcomes_total", Help: "Best-effort notification outcomes."},
		[]string{"channel", "outcome"},
	)
)

var registry *prometheus.Registry

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		HTTPRequests, HTTPLatency,
		ExternalRequests, ExternalLatency,
		CacheEvents,
		BookingsCreated, PaymentOutcomes, NotificationOutcomes,
	)
	registry = reg
	return reg
}

func MetricsHandler() http.Handler {
	if registry == nil {
		InitRegistry()
	}
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(function string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(function, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(function).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) {
	CacheEvents.WithLabelValues(cache, event).Inc()
}
