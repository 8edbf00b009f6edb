// Package metrics holds the Prometheus collectors for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	ticketsIssued    *prometheus.CounterVec
	capacityRejected *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	rateLimited      *prometheus.CounterVec
}

// New registers the collectors on reg. Passing a fresh prometheus.Registry
// keeps tests isolated from the default registry.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		ticketsIssued: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventhub_tickets_issued_total",
				Help: "Tickets issued per event",
			},
			[]string{"event_id"},
		),
		capacityRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventhub_capacity_rejections_total",
				Help: "Ticket purchases refused because the event was full",
			},
			[]string{"event_id"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "eventhub_http_request_duration_seconds",
				Help:    "HTTP request latency by route and status",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		rateLimited: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventhub_rate_limited_total",
				Help: "Requests refused by the rate limiter",
			},
			[]string{"scope"},
		),
	}
}

func (m *Metrics) TicketIssued(eventID string) {
	m.ticketsIssued.WithLabelValues(eventID).Inc()
}

func (m *Metrics) CapacityRejected(eventID string) {
	m.capacityRejected.WithLabelValues(eventID).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

func (m *Metrics) RateLimited(scope string) {
	m.rateLimited.WithLabelValues(scope).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
