package observability

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "ticketron"

// Metrics owns a dedicated registry with HTTP and domain counters.
type Metrics struct {
	registry *prometheus.Registry
	http     *fiberprometheus.FiberPrometheus
	errors   *prometheus.CounterVec
	renewals *prometheus.CounterVec
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics(serviceName string) *Metrics {
	registry := prometheus.NewRegistry()

	errors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "errors_total",
		Help:      "Requests that ended in an error page, by path, method and error code.",
	}, []string{"path", "method", "code"})

	renewals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "task_renewals_total",
		Help:      "Task renewal attempts by outcome.",
	}, []string{"outcome"})

	registry.MustRegister(errors, renewals)

	return &Metrics{
		registry: registry,
		http:     fiberprometheus.NewWithRegistry(registry, serviceName, metricsNamespace, "http", nil),
		errors:   errors,
		renewals: renewals,
	}
}

// Register mounts /metrics and the request instrumentation middleware.
func (m *Metrics) Register(app *fiber.App) {
	m.http.RegisterAt(app, "/metrics")
	app.Use(m.http.Middleware)
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// ObserveRenewal counts a renewal attempt.
func (m *Metrics) ObserveRenewal(outcome string) {
	if m == nil {
		return
	}
	m.renewals.WithLabelValues(outcome).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
