// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics exposes Prometheus counters for command outcomes and HTTP
// traffic on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdiddy/inpressign/pkg/types"
)

// OutcomeError labels a command that returned an error.
const OutcomeError = "error"

// Metrics holds the collectors served on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	commandsTotal   *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	commandsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inpressign",
			Name:      "commands_total",
			Help:      "Commands handled, by command and outcome (ok, degraded, error).",
		},
		[]string{"command", "outcome"},
	)
	commandDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "inpressign",
			Name:      "command_duration_seconds",
			Help:      "Command execution time in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inpressign",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests processed, by method, route, and status.",
		},
		[]string{"method", "path", "status"},
	)

	registry.MustRegister(commandsTotal, commandDuration, requestsTotal)

	return &Metrics{
		registry:        registry,
		commandsTotal:   commandsTotal,
		commandDuration: commandDuration,
		requestsTotal:   requestsTotal,
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Outcome maps a command's return values onto the outcome label.
func Outcome(res types.Result, err error) string {
	if err != nil {
		return OutcomeError
	}
	if res.Kind == "" {
		return string(types.ResultOK)
	}
	return string(res.Kind)
}

// ObserveCommand records one command execution.
func (m *Metrics) ObserveCommand(command, outcome string, elapsed time.Duration) {
	m.commandsTotal.WithLabelValues(command, outcome).Inc()
	m.commandDuration.WithLabelValues(command).Observe(elapsed.Seconds())
}

// Middleware counts every request by its route pattern, so path
// parameters do not explode label cardinality.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(interface{ StatusCode() int }); ok {
					status = he.StatusCode()
				} else if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			m.requestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			return err
		}
	}
}
