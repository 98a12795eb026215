package cache

import (
	"sync/atomic"
	"time"
)

// Metrics tracks cache effectiveness: hit/miss counts plus latency sums for
// cached and uncached lookups. All counters are safe for concurrent use.
type Metrics struct {
	hits   atomic.Int64
	misses atomic.Int64

	cachedLatencyMicros   atomic.Int64
	cachedCount           atomic.Int64
	uncachedLatencyMicros atomic.Int64
	uncachedCount         atomic.Int64
}

// Hits returns the number of cache hits.
func (m *Metrics) Hits() int64 { return m.hits.Load() }

// Misses returns the number of cache misses.
func (m *Metrics) Misses() int64 { return m.misses.Load() }

// HitRate returns the hit percentage over all lookups, 0 when none occurred.
func (m *Metrics) HitRate() float64 {
	hits := m.hits.Load()
	total := hits + m.misses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// ObserveCached records the latency of a lookup served from the cache.
func (m *Metrics) ObserveCached(d time.Duration) {
	m.cachedLatencyMicros.Add(d.Microseconds())
	m.cachedCount.Add(1)
}

// ObserveUncached records the latency of a lookup that went to the origin.
func (m *Metrics) ObserveUncached(d time.Duration) {
	m.uncachedLatencyMicros.Add(d.Microseconds())
	m.uncachedCount.Add(1)
}

// AvgCachedLatency returns the mean cached-lookup latency in microseconds.
func (m *Metrics) AvgCachedLatency() float64 {
	return avg(m.cachedLatencyMicros.Load(), m.cachedCount.Load())
}

// AvgUncachedLatency returns the mean origin-lookup latency in microseconds.
func (m *Metrics) AvgUncachedLatency() float64 {
	return avg(m.uncachedLatencyMicros.Load(), m.uncachedCount.Load())
}

// Improvement returns how many times faster cached lookups are than origin
// lookups. Returns 0 when there is no uncached data and 1 when there is no
// cached data to compare.
func (m *Metrics) Improvement() float64 {
	cached := m.AvgCachedLatency()
	uncached := m.AvgUncachedLatency()
	switch {
	case cached == 0:
		return 1
	case uncached == 0:
		return 0
	default:
		return uncached / cached
	}
}

func avg(sum, count int64) float64 {
	if count == 0 {
		return 0
	}
	return float64(sum) / float64(count)
}
