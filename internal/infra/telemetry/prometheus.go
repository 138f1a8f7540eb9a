// Package telemetry provides the Prometheus metrics implementation and the
// observability HTTP server.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"slackmcp/internal/domain"
)

type PrometheusMetrics struct {
	dispatchDuration *prometheus.HistogramVec
	refreshDuration  *prometheus.HistogramVec
	rateLimitWaits   *prometheus.CounterVec
	credentialExpiry prometheus.Gauge
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "slackmcp_dispatch_duration_seconds",
			Help:    "Duration of tool dispatches, including rate-limit waits.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"tool", "status"}),
		refreshDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "slackmcp_token_refresh_duration_seconds",
			Help:    "Duration of rotate exchanges, by outcome.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"status"}),
		rateLimitWaits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "slackmcp_rate_limit_waits_total",
			Help: "Rate-limit suspensions taken before retrying, by tool.",
		}, []string{"tool"}),
		credentialExpiry: factory.NewGauge(prometheus.GaugeOpts{
			Name: "slackmcp_credential_expiry_timestamp_seconds",
			Help: "Unix timestamp when the current credential expires, 0 if it does not.",
		}),
	}
}

func (m *PrometheusMetrics) ObserveDispatch(tool string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
		if kind, ok := domain.KindFrom(err); ok {
			status = string(kind)
		}
	}
	m.dispatchDuration.WithLabelValues(tool, status).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) ObserveRefresh(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.refreshDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) ObserveRateLimitWait(tool string, wait time.Duration) {
	m.rateLimitWaits.WithLabelValues(tool).Inc()
}

func (m *PrometheusMetrics) SetCredentialExpiry(expiresAt time.Time) {
	if expiresAt.IsZero() {
		m.credentialExpiry.Set(0)
		return
	}
	m.credentialExpiry.Set(float64(expiresAt.Unix()))
}
