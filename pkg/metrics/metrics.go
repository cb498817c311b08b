// Package metrics exposes Prometheus instrumentation for the HTTP server and
// the category product-count maintenance.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestDuration tracks HTTP latency by method, route and status code.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "candleshop",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// CountAdjustments counts product-count writes on categories.
	// result is one of "ok", "failed" or "skipped" (category not in the view).
	CountAdjustments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "candleshop",
			Subsystem: "catalog",
			Name:      "count_adjustments_total",
			Help:      "Category product count adjustments by direction and result.",
		},
		[]string{"direction", "result"},
	)

	// ReconcileCorrections counts categories whose stored count was wrong
	// when recomputed from the product collection.
	ReconcileCorrections = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "candleshop",
		Subsystem: "catalog",
		Name:      "reconcile_corrections_total",
		Help:      "Category product counts corrected by reconciliation.",
	})

	// EventsPublished counts domain events handed to the message broker.
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "candleshop",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Domain events published by routing key and result.",
		},
		[]string{"routing_key", "result"},
	)
)

// Registry holds every metric exported on /metrics.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	Registry.MustRegister(RequestDuration, CountAdjustments, ReconcileCorrections, EventsPublished)
}

// Middleware records RequestDuration for every request.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		RequestDuration.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
