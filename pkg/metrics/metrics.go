package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector manages the prometheus metrics for the dashboard service.
type Collector struct {
	namespace string
	registry  *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Search metrics
	SearchesTotal  *prometheus.CounterVec
	SearchDuration *prometheus.HistogramVec

	// Normalization metrics
	UnmappedIndices prometheus.Counter
}

// NewCollector creates a metrics collector with its own registry.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		namespace: namespace,
		registry:  prometheus.NewRegistry(),
	}

	c.RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	c.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status_code"},
	)

	c.SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of search engine queries",
		},
		[]string{"operation", "outcome"},
	)

	c.SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Search engine query duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	c.UnmappedIndices = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unmapped_indices_total",
			Help:      "Search hits or buckets whose index matched no registered log source",
		},
	)

	c.registry.MustRegister(
		c.RequestsTotal,
		c.RequestDuration,
		c.SearchesTotal,
		c.SearchDuration,
		c.UnmappedIndices,
	)

	return c
}

// ObserveSearch records the outcome and duration of one search query.
func (c *Collector) ObserveSearch(operation string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.SearchesTotal.WithLabelValues(operation, outcome).Inc()
	c.SearchDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveRequest records one HTTP request.
func (c *Collector) ObserveRequest(method, endpoint, statusCode string, duration time.Duration) {
	c.RequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	c.RequestDuration.WithLabelValues(method, endpoint, statusCode).Observe(duration.Seconds())
}

// Handler returns the prometheus exposition handler for this collector.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
