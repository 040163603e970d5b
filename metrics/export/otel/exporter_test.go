package otel

import (
	"context"
	"testing"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/metrics/export/internaldefs"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type fakeSource struct {
	snapshot goSession.MetricsSnapshot
}

func (f *fakeSource) MetricsSnapshot() goSession.MetricsSnapshot {
	return f.snapshot
}

func TestOTelExporterObservesCounters(t *testing.T) {
	source := &fakeSource{snapshot: goSession.MetricsSnapshot{
		Counters: map[goSession.MetricID]uint64{
			goSession.MetricSessionCreated: 9,
		},
	}}

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	exporter, err := NewOTelExporterFromSource(provider.Meter("goSession-test"), source)
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}
	defer exporter.Close()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(rm.ScopeMetrics) != 1 {
		t.Fatalf("scope metrics: got %d want 1", len(rm.ScopeMetrics))
	}

	metrics := rm.ScopeMetrics[0].Metrics
	if len(metrics) != len(internaldefs.CounterDefs) {
		t.Fatalf("instrument count: got %d want %d", len(metrics), len(internaldefs.CounterDefs))
	}

	found := false
	for _, m := range metrics {
		if m.Name != "gosession_session_created_total" {
			continue
		}
		found = true
		sum, ok := m.Data.(metricdata.Sum[int64])
		if !ok {
			t.Fatalf("unexpected data type %T", m.Data)
		}
		if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 9 {
			t.Fatalf("data points: %+v", sum.DataPoints)
		}
	}
	if !found {
		t.Fatal("session created counter was not exported")
	}
}

func TestOTelExporterRejectsNilInputs(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	if _, err := NewOTelExporterFromSource(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
	if _, err := NewOTelExporterFromSource(provider.Meter("goSession-test"), nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
}

func TestOTelExporterCloseIsIdempotent(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	exporter, err := NewOTelExporterFromSource(provider.Meter("goSession-test"), &fakeSource{})
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}

	if err := exporter.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := exporter.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	var nilExporter *OTelExporter
	if err := nilExporter.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}
