// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the auth counters.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics holds the application's collectors on a private registry.
type Metrics struct {
	Registry      *prometheus.Registry
	Predictions   *prometheus.CounterVec
	ModelFailures prometheus.Counter
	ModelLatency  prometheus.Histogram
	Logins        *prometheus.CounterVec
	Registrations *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors under the given namespace.
func NewMetrics(serviceName string) *Metrics {
	registry := prometheus.NewRegistry()

	predictions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "predictions_total",
			Help:      "Total number of successful predictions by yield band",
		},
		[]string{"band"},
	)

	modelFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "model_failures_total",
			Help:      "Total number of failed model calls",
		},
	)

	modelLatency := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: serviceName,
			Name:      "model_request_duration_seconds",
			Help:      "Latency of model predict calls",
			Buckets:   prometheus.DefBuckets,
		},
	)

	logins := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "login_attempts_total",
			Help:      "Total number of login attempts by outcome",
		},
		[]string{"outcome"},
	)

	registrations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "registrations_total",
			Help:      "Total number of registration attempts by outcome",
		},
		[]string{"outcome"},
	)

	registry.MustRegister(
		predictions, modelFailures, modelLatency, logins, registrations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		Registry:      registry,
		Predictions:   predictions,
		ModelFailures: modelFailures,
		ModelLatency:  modelLatency,
		Logins:        logins,
		Registrations: registrations,
	}
}

// Prediction counts one successful prediction in band.
func (m *Metrics) Prediction(band string) {
	m.Predictions.WithLabelValues(band).Inc()
}

// ModelCall records the latency of one model call and whether it failed.
func (m *Metrics) ModelCall(d time.Duration, err error) {
	m.ModelLatency.Observe(d.Seconds())
	if err != nil {
		m.ModelFailures.Inc()
	}
}

// Login counts one login attempt.
func (m *Metrics) Login(outcome string) {
	m.Logins.WithLabelValues(outcome).Inc()
}

// Registration counts one registration attempt.
func (m *Metrics) Registration(outcome string) {
	m.Registrations.WithLabelValues(outcome).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
