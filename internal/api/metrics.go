package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the client-side request collectors.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_client_requests_total",
				Help: "Total number of requests sent to the todo API",
			},
			[]string{"method", "code"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todo_client_request_duration_seconds",
				Help:    "Histogram of todo API request durations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		inflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "todo_client_inflight_requests",
			Help: "Number of todo API requests in flight",
		}),
	}
}

// Instrument wraps next with the in-flight, counter and duration collectors.
func (m *Metrics) Instrument(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperInFlight(m.inflight,
		promhttp.InstrumentRoundTripperCounter(m.requests,
			promhttp.InstrumentRoundTripperDuration(m.duration, next),
		),
	)
}
