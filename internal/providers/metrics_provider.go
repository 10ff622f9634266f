package providers

import (
	"buildwatch/internal/structures"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits(feed string)
	IncCacheMisses(feed string)
	ObservePersistenceDuration(duration time.Duration)
	IncPolls(titleID string, outcome string)
	IncUpdatesDetected(titleID string)
	IncAnnouncementFailures()
	SetVersionsTotal(titleID string, count int)
	Handler() http.Handler
}

const (
	PollOutcomeOK    = "ok"
	PollOutcomeError = "error"
)

type MetricsProvider struct {
	registry             *prometheus.Registry
	requestsTotal        *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
	cacheHits            *prometheus.CounterVec
	cacheMisses          *prometheus.CounterVec
	persistenceDuration  prometheus.Histogram
	pollsTotal           *prometheus.CounterVec
	updatesDetected      *prometheus.CounterVec
	announcementFailures prometheus.Counter
	versionsTotal        *prometheus.GaugeVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits(feed string) {
	m.cacheHits.WithLabelValues(feed).Inc()
}

func (m *MetricsProvider) IncCacheMisses(feed string) {
	m.cacheMisses.WithLabelValues(feed).Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncPolls(titleID string, outcome string) {
	m.pollsTotal.WithLabelValues(titleID, outcome).Inc()
}

func (m *MetricsProvider) IncUpdatesDetected(titleID string) {
	m.updatesDetected.WithLabelValues(titleID).Inc()
}

func (m *MetricsProvider) IncAnnouncementFailures() {
	m.announcementFailures.Inc()
}

func (m *MetricsProvider) SetVersionsTotal(titleID string, count int) {
	m.versionsTotal.WithLabelValues(titleID).Set(float64(count))
}

func (m *MetricsProvider) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &MetricsProvider{
		registry: registry,

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "buildwatch_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "buildwatch_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "buildwatch_cache_hits_total",
			Help: "Cached feed responses served, by feed",
		}, []string{"feed"}),

		cacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "buildwatch_cache_misses_total",
			Help: "Feed responses computed because the cache had no entry, by feed",
		}, []string{"feed"}),

		persistenceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "buildwatch_persistence_duration_seconds",
			Help:    "Duration of store writes in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		pollsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "buildwatch_polls_total",
			Help: "Upload list polls per title and outcome",
		}, []string{"title", "outcome"}),

		updatesDetected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "buildwatch_updates_detected_total",
			Help: "New versions detected per title",
		}, []string{"title"}),

		announcementFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "buildwatch_announcement_failures_total",
			Help: "Automatic announcements that could not be written",
		}),

		versionsTotal: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "buildwatch_versions_total",
			Help: "Number of known versions per title",
		}, []string{"title"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits(_ string)                            {}
func (n *noopMetrics) IncCacheMisses(_ string)                          {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncPolls(_ string, _ string)                      {}
func (n *noopMetrics) IncUpdatesDetected(_ string)                      {}
func (n *noopMetrics) IncAnnouncementFailures()                         {}
func (n *noopMetrics) SetVersionsTotal(_ string, _ int)                 {}
func (n *noopMetrics) Handler() http.Handler                            { return http.NotFoundHandler() }
