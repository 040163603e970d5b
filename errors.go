package goSession

import "errors"

var (
	// ErrStoreUnavailable is returned when the backing Redis store is
	// unreachable or times out. Callers decide retry policy; the engine
	// surfaces the first failure without retrying.
	ErrStoreUnavailable = errors.New("session store unavailable")
	// ErrSessionCorrupt is returned when a stored session row cannot be
	// interpreted (missing or malformed metadata fields).
	ErrSessionCorrupt = errors.New("session row corrupt")
	// ErrInvalidConfig is returned for invalid configuration. It is raised
	// at construction time only, never during per-call operation.
	ErrInvalidConfig = errors.New("invalid session store configuration")
)
