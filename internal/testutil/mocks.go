package testutil

import (
	"buildwatch/internal/providers"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (e LogEntry) Message() string {
	return fmt.Sprintf(e.Format, e.Args...)
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// HasEntry reports whether a message at level contains substr.
func (m *MockLogger) HasEntry(level, substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Logs {
		if e.Level == level && strings.Contains(e.Message(), substr) {
			return true
		}
	}
	return false
}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu                   sync.Mutex
	Requests             int
	CacheHits            int
	CacheMisses          int
	Persists             int
	Polls                map[string]int // key: "title:outcome"
	UpdatesDetected      map[string]int
	AnnouncementFailures int
	VersionsTotal        map[string]int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits(_ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}
func (m *MockMetrics) IncCacheMisses(_ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}
func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persists++
}
func (m *MockMetrics) IncPolls(titleID string, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Polls == nil {
		m.Polls = map[string]int{}
	}
	m.Polls[titleID+":"+outcome]++
}
func (m *MockMetrics) IncUpdatesDetected(titleID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdatesDetected == nil {
		m.UpdatesDetected = map[string]int{}
	}
	m.UpdatesDetected[titleID]++
}
func (m *MockMetrics) IncAnnouncementFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AnnouncementFailures++
}
func (m *MockMetrics) SetVersionsTotal(titleID string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.VersionsTotal == nil {
		m.VersionsTotal = map[string]int{}
	}
	m.VersionsTotal[titleID] = count
}
func (m *MockMetrics) Handler() http.Handler { return http.NotFoundHandler() }

// PersistCount returns the number of observed store writes.
func (m *MockMetrics) PersistCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Persists
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu      sync.Mutex
	Data    map[string][]byte
	Cleared int
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data = make(map[string][]byte)
	m.Cleared++
}

// MockRateLimiter implements providers.RateLimiterInterface with a fixed budget per key.
type MockRateLimiter struct {
	mu       sync.Mutex
	Limit    int
	Attempts map[string]int
}

func (m *MockRateLimiter) Allow(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Attempts == nil {
		m.Attempts = map[string]int{}
	}
	m.Attempts[key]++
	return m.Limit <= 0 || m.Attempts[key] <= m.Limit
}

func (m *MockRateLimiter) Reset(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Attempts, key)
}
