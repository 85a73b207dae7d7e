package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK        = "ok"
	OutcomeNoContent = "no_content"
	OutcomeError     = "error"
)

type Metrics struct {
	upstreamRequests *prometheus.CounterVec
	analyses         *prometheus.CounterVec
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

// NewRegistry returns the private registry served on /metrics.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	return reg
}

func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		upstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "playerreport_upstream_requests_total",
			Help: "Requests made to the player statistics API",
		}, []string{"endpoint", "outcome"}),

		analyses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "playerreport_analyses_total",
			Help: "Player analyses by outcome",
		}, []string{"outcome"}),

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "playerreport_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"path", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "playerreport_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
	}
}

func (m *Metrics) IncUpstream(endpoint, outcome string) {
	m.upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
}

func (m *Metrics) IncAnalysis(outcome string) {
	m.analyses.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRequest(path string, status int, d time.Duration) {
	m.requestsTotal.WithLabelValues(path, statusBucket(status)).Inc()
	m.requestDuration.WithLabelValues(path).Observe(d.Seconds())
}

func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
