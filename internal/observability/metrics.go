package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every storefront collector and is what /metrics serves.
var Registry = newRegistry()

var collectorFactory = promauto.With(Registry)

var (
	// HTTPRequestsTotal counts handled HTTP requests.
	HTTPRequestsTotal = collectorFactory.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration observes HTTP request latency.
	HTTPRequestDuration = collectorFactory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	// OrderLookupsTotal counts order lookups by mode and outcome.
	OrderLookupsTotal = collectorFactory.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_order_lookups_total",
		Help: "Total number of order lookups",
	}, []string{"mode", "outcome"})

	// OrderUpdatesTotal counts fulfillment updates by outcome.
	OrderUpdatesTotal = collectorFactory.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_order_updates_total",
		Help: "Total number of order fulfillment updates",
	}, []string{"outcome"})

	// NewsletterSubscriptionsTotal counts subscribe calls by outcome.
	NewsletterSubscriptionsTotal = collectorFactory.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_newsletter_subscriptions_total",
		Help: "Total number of newsletter subscription requests",
	}, []string{"outcome"})

	// WorkerEventsTotal counts consumed domain events by type and outcome.
	WorkerEventsTotal = collectorFactory.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_worker_events_total",
		Help: "Total number of domain events consumed by the worker",
	}, []string{"type", "outcome"})

	// BuildInfo is set to 1 for the running service, version and environment.
	BuildInfo = collectorFactory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "storefront_build_info",
		Help: "Storefront build and deployment information",
	}, []string{"service", "version", "environment"})
)

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
