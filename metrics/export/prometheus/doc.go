// Package prometheus renders goSession counters in the Prometheus text
// exposition format, either as a string or through an http.Handler.
//
// The renderer is deliberately dependency-free: the counter set is small and
// static, so the text format is emitted directly.
//
// # What this package must NOT do
//
//   - Mutate store state.
//   - Register anything with a global Prometheus registry.
package prometheus
