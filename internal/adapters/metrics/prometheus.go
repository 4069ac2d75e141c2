package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "realestate"

// Metrics держит собственный registry, чтобы тесты и несколько экземпляров не конфликтовали
// с глобальным DefaultRegisterer.
type Metrics struct {
	registry *prometheus.Registry

	partitionQueries  *prometheus.CounterVec
	partitionLatency  *prometheus.HistogramVec
	partitionFallback prometheus.Counter
	cacheEvents       *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpLatency       *prometheus.HistogramVec
	ingestedListings  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		partitionQueries: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "partition_queries_total", Help: "Per-partition queries."},
			[]string{"partition", "op", "result"},
		),
		partitionLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace, Name: "partition_query_duration_seconds",
				Help:    "Per-partition query duration seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"partition", "op"},
		),
		// без лейбла: тип приходит от клиента
		partitionFallback: prometheus.NewCounter(
			prometheus.CounterOpts{Namespace: namespace, Name: "partition_fallback_total", Help: "Unknown type filters widened to all partitions."},
		),
		cacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "cache_events_total", Help: "Cache hits/misses/sets."},
			[]string{"event"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
			[]string{"route", "method", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace, Name: "http_request_duration_seconds",
				Help:    "HTTP request duration seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		ingestedListings: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "ingested_listings_total", Help: "Listings received from the scraping pipeline."},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		m.partitionQueries, m.partitionLatency, m.partitionFallback,
		m.cacheEvents, m.httpRequests, m.httpLatency, m.ingestedListings,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObservePartitionQuery(partition, op string, err error, d time.Duration) {
	m.partitionQueries.WithLabelValues(partition, op, resultLabel(err)).Inc()
	m.partitionLatency.WithLabelValues(partition, op).Observe(d.Seconds())
}

func (m *Metrics) PartitionFallback() {
	m.partitionFallback.Inc()
}

// ObserveCache: event - hit|miss|set|error
func (m *Metrics) ObserveCache(event string) {
	m.cacheEvents.WithLabelValues(event).Inc()
}

func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(route, method).Observe(d.Seconds())
}

// ObserveIngest: result - created|updated|invalid|failed
func (m *Metrics) ObserveIngest(result string) {
	m.ingestedListings.WithLabelValues(result).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
