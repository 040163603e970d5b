package goSession

import "sync/atomic"

// MetricID identifies one operation counter.
type MetricID uint16

const (
	// MetricSessionCreated counts sessions allocated by CreateSession.
	MetricSessionCreated MetricID = iota
	// MetricSessionInserted counts full-row writes (new or id-rotated sessions).
	MetricSessionInserted
	// MetricSessionUpdated counts partial delta writes.
	MetricSessionUpdated
	// MetricSessionLoaded counts FindByID hits.
	MetricSessionLoaded
	// MetricSessionMissed counts FindByID misses.
	MetricSessionMissed
	// MetricSessionExpiredOnRead counts rows evicted by the read path.
	MetricSessionExpiredOnRead
	// MetricSessionDeleted counts rows removed by DeleteByID (including
	// sweep and expired-on-read deletions).
	MetricSessionDeleted
	// MetricPrincipalLookup counts FindByPrincipal queries.
	MetricPrincipalLookup
	// MetricSweepRun counts sweep passes.
	MetricSweepRun
	// MetricSweepEvicted counts rows evicted by sweeps.
	MetricSweepEvicted
	// MetricSweepFailed counts sweep passes that reported failures.
	MetricSweepFailed
	// MetricStoreError counts operations that failed against Redis.
	MetricStoreError
	// MetricCodecError counts attribute encode/decode failures.
	MetricCodecError
	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds the atomic operation counters of one store instance. A nil
// or disabled Metrics accepts updates and reports zeroes.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates the counter set for one store.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether counters are being recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to the counter.
func (m *Metrics) Inc(id MetricID) {
	m.Add(id, 1)
}

// Add adds n to the counter.
func (m *Metrics) Add(id MetricID, n uint64) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, n)
}

// Value reads a single counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters. Disabled metrics yield an empty map.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}

	s := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
