// Package metrics exposes Prometheus collectors for the estimation service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	EstimatesTotal   *prometheus.CounterVec
	FailuresTotal    *prometheus.CounterVec
	EstimateDuration *prometheus.HistogramVec
	ModelReloads     *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	ModelInfo        *prometheus.GaugeVec
}

// New creates collectors in a fresh registry, including Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		EstimatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studycost_estimates_total",
				Help: "Total number of successful estimates",
			},
			[]string{"model"},
		),

		FailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studycost_estimate_failures_total",
				Help: "Total number of failed estimates by failure kind",
			},
			[]string{"kind"},
		),

		EstimateDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studycost_estimate_duration_seconds",
				Help:    "Duration of model inference in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
			[]string{"model"},
		),

		ModelReloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studycost_model_reloads_total",
				Help: "Total number of model reload attempts by result",
			},
			[]string{"result"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studycost_http_requests_total",
				Help: "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),

		ModelInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "studycost_model_info",
				Help: "Currently loaded model; the value is always 1",
			},
			[]string{"model", "schema_version"},
		),
	}
}

// ObserveEstimate records a successful estimate.
func (m *Metrics) ObserveEstimate(modelName string, d time.Duration) {
	m.EstimatesTotal.WithLabelValues(modelName).Inc()
	m.EstimateDuration.WithLabelValues(modelName).Observe(d.Seconds())
}

// ObserveFailure records a failed estimate.
func (m *Metrics) ObserveFailure(kind string) {
	m.FailuresTotal.WithLabelValues(kind).Inc()
}

// ObserveReload records a model reload attempt.
func (m *Metrics) ObserveReload(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.ModelReloads.WithLabelValues(result).Inc()
}

// SetModel marks the loaded model.
func (m *Metrics) SetModel(name, schemaVersion string) {
	m.ModelInfo.Reset()
	m.ModelInfo.WithLabelValues(name, schemaVersion).Set(1)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest counts one HTTP request.
func (m *Metrics) ObserveRequest(route, code string) {
	m.HTTPRequests.WithLabelValues(route, code).Inc()
}
