// Package otel provides OpenTelemetry metric exporter bindings for
// goSession counters.
//
// [NewOTelExporter] registers an Int64ObservableCounter per counter. A
// single callback reads [goSession.Store.MetricsSnapshot] on each collection
// cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider; callers supply the Meter.
//   - Mutate store state.
package otel
