package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BackendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stusearch_backend_requests_total",
		Help: "Total number of requests sent to the records backend",
	}, []string{"endpoint", "outcome"})

	BackendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stusearch_backend_request_duration_seconds",
		Help:    "Time until the records backend answered, in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	SearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stusearch_searches_total",
		Help: "Searches issued by users, by outcome",
	}, []string{"outcome"})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stusearch_notifications_total",
		Help: "Notifications shown, by severity",
	}, []string{"severity"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stusearch_http_requests_total",
		Help: "Total number of HTTP requests served by the UI",
	}, []string{"method", "route", "status"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stusearch_active_sessions",
		Help: "Browser sessions currently held in memory",
	})
)

// ObserveBackend records one backend round trip.
func ObserveBackend(endpoint, outcome string, d time.Duration) {
	BackendRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	BackendRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func Handler() http.Handler {
	return promhttp.Handler()
}
