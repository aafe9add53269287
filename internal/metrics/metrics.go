// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the service's Prometheus metrics. A nil *Collector is
// valid and records nothing, so tests can pass nil.
type Collector struct {
	registry        *prometheus.Registry
	httpStatus      *prometheus.CounterVec
	listingQueries  prometheus.Counter
	listingsCreated prometheus.Counter
	authFailures    prometheus.Counter
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vacancydesk_http_status_total",
			Help: "Responses by HTTP status code.",
		}, []string{"status_code"}),
		listingQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vacancydesk_listing_queries_total",
			Help: "Listing search requests served.",
		}),
		listingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vacancydesk_listings_created_total",
			Help: "Listings created by admin writes or ingestion.",
		}),
		authFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vacancydesk_auth_failures_total",
			Help: "Failed logins and rejected setup attempts.",
		}),
	}
	reg.MustRegister(c.httpStatus, c.listingQueries, c.listingsCreated, c.authFailures)
	return c
}

// Handler serves the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordHTTPStatus counts a response by status code.
func (c *Collector) RecordHTTPStatus(code int) {
	if c == nil {
		return
	}
	c.httpStatus.WithLabelValues(strconv.Itoa(code)).Inc()
}

// RecordListingQuery counts a listing search.
func (c *Collector) RecordListingQuery() {
	if c == nil {
		return
	}
	c.listingQueries.Inc()
}

// RecordListingCreated counts a created listing.
func (c *Collector) RecordListingCreated() {
	if c == nil {
		return
	}
	c.listingsCreated.Inc()
}

// RecordAuthFailure counts a rejected authentication attempt.
func (c *Collector) RecordAuthFailure() {
	if c == nil {
		return
	}
	c.authFailures.Inc()
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records the status code of every response.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		c.RecordHTTPStatus(rec.status)
	})
}
