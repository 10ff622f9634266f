package providers

import (
	"buildwatch/internal/structures"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: false},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	// Ensure no-op methods don't panic
	m.IncRequestsTotal("/test", 200)
	m.ObserveRequestDuration("/test", time.Millisecond)
	m.IncCacheHits("templates")
	m.IncCacheMisses("announcements")
	m.ObservePersistenceDuration(time.Millisecond)
	m.IncPolls("1", PollOutcomeOK)
	m.IncUpdatesDetected("1")
	m.IncAnnouncementFailures()
	m.SetVersionsTotal("1", 10)
}

func TestMetricsProvider_WhenEnabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*MetricsProvider)
	assert.True(t, ok, "should return MetricsProvider when enabled")

	// a second provider owns its own registry
	assert.NotPanics(t, func() { NewMetricsProvider(conf) })
}

func TestMetricsProvider_ExposesCounters(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf)

	m.IncRequestsTotal("/status", 200)
	m.IncRequestsTotal("/status", 404)
	m.ObserveRequestDuration("/status", 5*time.Millisecond)
	m.IncCacheHits("templates")
	m.IncCacheMisses("announcements")
	m.ObservePersistenceDuration(100 * time.Millisecond)
	m.IncPolls("777", PollOutcomeError)
	m.IncUpdatesDetected("777")
	m.IncAnnouncementFailures()
	m.SetVersionsTotal("777", 3)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rr.Body.String()
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(body, `buildwatch_polls_total{outcome="error",title="777"} 1`))
	assert.True(t, strings.Contains(body, `buildwatch_versions_total{title="777"} 3`))
	assert.True(t, strings.Contains(body, `buildwatch_cache_hits_total{feed="templates"} 1`))
	assert.True(t, strings.Contains(body, `buildwatch_cache_misses_total{feed="announcements"} 1`))
	assert.True(t, strings.Contains(body, `buildwatch_requests_total{endpoint="/status",status="4xx"} 1`))
}

func TestHttpStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
	}
}
