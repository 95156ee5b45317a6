package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "recallect"

// LLM request outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeError       = "error"
	OutcomeTimeout     = "timeout"
	OutcomeMalformed   = "malformed"
	OutcomeBreakerOpen = "breaker_open"
)

// Collector holds the Prometheus metrics for one process. Each collector owns its
// registry so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	LLMRequests *prometheus.CounterVec
	LLMDuration prometheus.Histogram

	RemindersCreated  *prometheus.CounterVec
	RemindersResolved *prometheus.CounterVec
}

func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		LLMRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_requests_total",
				Help:      "LLM classification requests by outcome",
			},
			[]string{"outcome"},
		),
		LLMDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_request_duration_seconds",
				Help:      "LLM request duration in seconds",
				Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 12, 20},
			},
		),
		RemindersCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reminders_created_total",
				Help:      "Reminders created automatically from conversations",
			},
			[]string{"source"},
		),
		RemindersResolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reminders_resolved_total",
				Help:      "Reminders dismissed automatically by a later conversation",
			},
			[]string{"source"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.LLMRequests,
		c.LLMDuration,
		c.RemindersCreated,
		c.RemindersResolved,
	)
	return c
}

// ObserveLLM records one LLM call. A nil collector is a no-op.
func (c *Collector) ObserveLLM(outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.LLMRequests.WithLabelValues(outcome).Inc()
	c.LLMDuration.Observe(elapsed.Seconds())
}

func (c *Collector) ReminderCreated(source string) {
	if c == nil {
		return
	}
	c.RemindersCreated.WithLabelValues(source).Inc()
}

func (c *Collector) RemindersDismissed(source string, n int) {
	if c == nil || n == 0 {
		return
	}
	c.RemindersResolved.WithLabelValues(source).Add(float64(n))
}

func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler exposes the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
