package providers

import (
	"net/http"
	"time"
)

// local mocks to avoid an import cycle with testutil

type cacheTestLogger struct{}

func (m *cacheTestLogger) Errorf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *cacheTestLogger) Warnf(_ TypeEnum, _ string, _ ...interface{})  {}
func (m *cacheTestLogger) Debugf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *cacheTestLogger) Infof(_ TypeEnum, _ string, _ ...interface{})  {}
func (m *cacheTestLogger) Fatalf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *cacheTestLogger) Close()                                        {}

type mockMetrics struct {
	requestEndpoint string
	requestStatus   int
	requestCalls    int
	durationCalls   int
	hits            int
	misses          int
	feed            string
}

func (m *mockMetrics) IncRequestsTotal(endpoint string, status int) {
	m.requestEndpoint = endpoint
	m.requestStatus = status
	m.requestCalls++
}
func (m *mockMetrics) ObserveRequestDuration(_ string, _ time.Duration) { m.durationCalls++ }
func (m *mockMetrics) IncCacheHits(feed string)                         { m.hits++; m.feed = feed }
func (m *mockMetrics) IncCacheMisses(feed string)                       { m.misses++; m.feed = feed }
func (m *mockMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (m *mockMetrics) IncPolls(_ string, _ string)                      {}
func (m *mockMetrics) IncUpdatesDetected(_ string)                      {}
func (m *mockMetrics) IncAnnouncementFailures()                         {}
func (m *mockMetrics) SetVersionsTotal(_ string, _ int)                 {}
func (m *mockMetrics) Handler() http.Handler                            { return http.NotFoundHandler() }
