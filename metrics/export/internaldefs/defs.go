package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef binds one [goSession.MetricID] to its exported metric name.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter, in emission order.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricSessionCreated, Name: "gosession_session_created_total", Help: "Sessions allocated."},
	{ID: goSession.MetricSessionInserted, Name: "gosession_session_inserted_total", Help: "Full-row session writes."},
	{ID: goSession.MetricSessionUpdated, Name: "gosession_session_updated_total", Help: "Partial delta session writes."},
	{ID: goSession.MetricSessionLoaded, Name: "gosession_session_loaded_total", Help: "Session reads that found a live row."},
	{ID: goSession.MetricSessionMissed, Name: "gosession_session_missed_total", Help: "Session reads that found no row."},
	{ID: goSession.MetricSessionExpiredOnRead, Name: "gosession_session_expired_on_read_total", Help: "Expired rows evicted by the read path."},
	{ID: goSession.MetricSessionDeleted, Name: "gosession_session_deleted_total", Help: "Deleted session rows."},
	{ID: goSession.MetricPrincipalLookup, Name: "gosession_principal_lookup_total", Help: "Principal index queries."},
	{ID: goSession.MetricSweepRun, Name: "gosession_sweep_run_total", Help: "Expiry sweep passes."},
	{ID: goSession.MetricSweepEvicted, Name: "gosession_sweep_evicted_total", Help: "Rows evicted by sweeps."},
	{ID: goSession.MetricSweepFailed, Name: "gosession_sweep_failed_total", Help: "Sweep passes that reported failures."},
	{ID: goSession.MetricStoreError, Name: "gosession_store_error_total", Help: "Operations that failed against the backing store."},
	{ID: goSession.MetricCodecError, Name: "gosession_codec_error_total", Help: "Attribute encode/decode failures."},
}
