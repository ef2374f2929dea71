// Package metrics exposes Prometheus counters for HTTP traffic and event
// delivery.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	accounts "github.com/goliatone/go-accounts"
)

const namespace = "accounts"

type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	events          *prometheus.CounterVec
	eventDuration   *prometheus.HistogramVec
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Account events handed to the broker",
			},
			[]string{"routing_key", "status"},
		),
		eventDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "event_publish_duration_seconds",
				Help:      "Time spent publishing account events",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"routing_key"},
		),
	}
}

// InstrumentNotifier counts every publish attempt by routing key and outcome
func (m *Metrics) InstrumentNotifier(next accounts.Notifier) accounts.Notifier {
	return accounts.NotifierFunc(func(ctx context.Context, exchange, routingKey string, payload any) error {
		timer := prometheus.NewTimer(m.eventDuration.WithLabelValues(routingKey))
		defer timer.ObserveDuration()

		err := next.Publish(ctx, exchange, routingKey, payload)
		status := "ok"
		if err != nil {
			status = "error"
		}
		m.events.WithLabelValues(routingKey, status).Inc()
		return err
	})
}

// Middleware records request counts and latency by route pattern. Errors
// are rendered through the app's ErrorHandler first so the recorded status
// is the one the client receives.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		route := c.Route().Path
		m.requests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return nil
	}
}

// Handler serves the registry in the Prometheus text format
func Handler(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
