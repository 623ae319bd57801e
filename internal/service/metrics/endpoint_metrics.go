package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Endpoint tracks latency and failures per API endpoint.
type Endpoint struct {
	Latency *prometheus.HistogramVec
	Errors  *prometheus.CounterVec
}

// NewEndpoint registers the endpoint vectors on reg (nil means the default registerer).
func NewEndpoint(reg prometheus.Registerer) *Endpoint {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Endpoint{
		Latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "marketpulse",
				Subsystem: "api",
				Name:      "latency_seconds",
				Help:      "Latency of market API endpoints",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		Errors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "marketpulse",
				Subsystem: "api",
				Name:      "errors_total",
				Help:      "Errors by market API endpoint and code",
			},
			[]string{"endpoint", "code"},
		),
	}
}

// Observe records one call; code is empty on success.
func (m *Endpoint) Observe(endpoint string, start time.Time, code string) {
	m.Latency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if code != "" {
		m.Errors.WithLabelValues(endpoint, code).Inc()
	}
}
