package testutil

import (
	"sync"
	"time"

	"github.com/lockedloop/tempus-fugit/internal/providers"
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

// HasLevel reports whether any recorded entry carries the given level.
func (m *MockLogger) HasLevel(level string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Logs {
		if e.Level == level {
			return true
		}
	}
	return false
}

// MockBackend is an in-memory storage.Backend with failure switches.
type MockBackend struct {
	mu      sync.Mutex
	Data    map[string][]byte
	GetErr  error
	SetErr  error
	Deleted []string
}

func NewMockBackend() *MockBackend {
	return &MockBackend{Data: map[string][]byte{}}
}

func (m *MockBackend) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	val, ok := m.Data[key]
	if !ok {
		return nil, nil
	}
	return val, nil
}

func (m *MockBackend) Set(key string, val []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	cp := make([]byte, len(val))
	copy(cp, val)
	m.Data[key] = cp
	return nil
}

func (m *MockBackend) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
	m.Deleted = append(m.Deleted, key)
	return nil
}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu             sync.Mutex
	Requests       int
	CacheHits      int
	CacheMisses    int
	Persists       int
	SyncFailures   int
	Ticks          int
	ContainerGauge func() float64
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}
func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}
func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persists++
}
func (m *MockMetrics) IncSyncFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SyncFailures++
}
func (m *MockMetrics) IncTicksTotal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ticks++
}
func (m *MockMetrics) RegisterContainersGauge(f func() float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ContainerGauge = f
}
