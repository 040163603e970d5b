package goSession

import (
	"sync"
	"testing"
)

func TestMetricsIncAddValue(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricSessionCreated)
	m.Inc(MetricSessionCreated)
	m.Add(MetricSweepEvicted, 5)

	if got := m.Value(MetricSessionCreated); got != 2 {
		t.Fatalf("created: got %d want 2", got)
	}
	if got := m.Value(MetricSweepEvicted); got != 5 {
		t.Fatalf("evicted: got %d want 5", got)
	}
	if got := m.Value(MetricSessionDeleted); got != 0 {
		t.Fatalf("untouched counter: got %d want 0", got)
	}
}

func TestMetricsSnapshotCopies(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricSessionLoaded)

	snap := m.Snapshot()
	if got := snap.Counters[MetricSessionLoaded]; got != 1 {
		t.Fatalf("snapshot: got %d want 1", got)
	}
	if len(snap.Counters) != int(metricIDCount) {
		t.Fatalf("snapshot size: got %d want %d", len(snap.Counters), metricIDCount)
	}

	m.Inc(MetricSessionLoaded)
	if got := snap.Counters[MetricSessionLoaded]; got != 1 {
		t.Fatal("snapshot must not observe later updates")
	}
}

func TestMetricsDisabled(t *testing.T) {
	m := NewMetrics(MetricsConfig{})

	m.Inc(MetricSessionCreated)
	m.Add(MetricSweepEvicted, 10)

	if m.Enabled() {
		t.Fatal("metrics should report disabled")
	}
	if got := m.Value(MetricSessionCreated); got != 0 {
		t.Fatalf("disabled counter recorded %d", got)
	}
	if snap := m.Snapshot(); len(snap.Counters) != 0 {
		t.Fatalf("disabled snapshot must be empty, got %v", snap.Counters)
	}
}

func TestMetricsNilReceiverSafe(t *testing.T) {
	var m *Metrics

	m.Inc(MetricSessionCreated)
	m.Add(MetricSweepEvicted, 3)

	if m.Enabled() {
		t.Fatal("nil metrics must report disabled")
	}
	if got := m.Value(MetricSessionCreated); got != 0 {
		t.Fatalf("nil metrics value: %d", got)
	}
	if snap := m.Snapshot(); snap.Counters == nil || len(snap.Counters) != 0 {
		t.Fatalf("nil metrics snapshot: %v", snap.Counters)
	}
}

func TestMetricsOutOfRangeID(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(metricIDCount)
	m.Inc(MetricID(9999))

	if got := m.Value(MetricID(9999)); got != 0 {
		t.Fatalf("out-of-range counter: %d", got)
	}
}

func TestMetricsConcurrentUpdates(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const (
		workers = 8
		rounds  = 1000
	)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				m.Inc(MetricSessionLoaded)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricSessionLoaded); got != workers*rounds {
		t.Fatalf("concurrent count: got %d want %d", got, workers*rounds)
	}
}
