package monitoring

import (
	"sync/atomic"
	"time"
)

// Metrics holds application counters
type Metrics struct {
	RequestCount  int64
	ErrorCount    int64
	CacheHits     int64
	CacheMisses   int64
	ProviderCalls int64
	AuditsRun     int64
	StartTime     time.Time
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime: time.Now(),
	}
}

// IncrementRequest increments the request count
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// IncrementCacheHit increments cache hit count
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
}

// IncrementCacheMiss increments cache miss count
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
}

// IncrementProviderCalls increments the provider API call count
func (m *Metrics) IncrementProviderCalls() {
	atomic.AddInt64(&m.ProviderCalls, 1)
}

// IncrementAudits increments the completed audit count
func (m *Metrics) IncrementAudits() {
	atomic.AddInt64(&m.AuditsRun, 1)
}

// GetStats returns a snapshot of all counters
func (m *Metrics) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"request_count":  atomic.LoadInt64(&m.RequestCount),
		"error_count":    atomic.LoadInt64(&m.ErrorCount),
		"cache_hits":     atomic.LoadInt64(&m.CacheHits),
		"cache_misses":   atomic.LoadInt64(&m.CacheMisses),
		"provider_calls": atomic.LoadInt64(&m.ProviderCalls),
		"audits_run":     atomic.LoadInt64(&m.AuditsRun),
		"uptime_seconds": time.Since(m.StartTime).Seconds(),
	}
}
