// Package codec converts arbitrary in-memory attribute values to and from
// the opaque string form stored in session rows.
//
// The default [Gob] codec gob-serializes the value and base64-encodes the
// bytes. Composite types stored through an interface must be registered with
// [Register] (a passthrough to gob.Register) before first use, typically in
// an init function; built-in scalar types need no registration.
//
// # What this package must NOT do
//
//   - Import the root package or anything above it (no upward imports).
//   - Interpret payloads: a codec round-trips values, nothing more.
package codec
