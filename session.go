package goSession

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/MrEthical07/goSession/codec"
	"github.com/google/uuid"
)

// Session is the in-memory representation of one stored session row plus its
// transient change-tracking state. Sessions are produced by
// [Store.CreateSession] and [Store.FindByID]; the zero value is not usable.
//
// A Session belongs to a single request. It is not safe for concurrent use;
// sharing one instance across goroutines is undefined behavior by contract.
// Change-tracking state (the dirty set, the new flag) is never persisted; it
// only decides whether and what the next save writes.
type Session struct {
	store *Store

	id                  string
	creationTime        time.Time
	lastAccessedTime    time.Time
	maxInactiveInterval time.Duration

	// attributes holds the encoded form; values pass through the store's
	// codec on the way in and out.
	attributes map[string]string

	isNew     bool
	metaDirty bool
	// dirty holds attribute names mutated since the last persist. A name
	// present here but absent from attributes marks a removal.
	dirty map[string]struct{}
	// indexedPrincipal is the principal value the secondary index currently
	// holds for this session, as of the last persist.
	indexedPrincipal string
	// originalID diverges from id after ChangeID until the next persist.
	originalID string
}

// ID returns the session identifier. It changes only through [Session.ChangeID].
func (sess *Session) ID() string {
	return sess.id
}

// CreationTime returns when the session was created. Immutable.
func (sess *Session) CreationTime() time.Time {
	return sess.creationTime
}

// LastAccessedTime returns the last recorded access time.
func (sess *Session) LastAccessedTime() time.Time {
	return sess.lastAccessedTime
}

// MaxInactiveInterval returns the inactivity window after which the session
// expires. Zero or negative means the session never expires.
func (sess *Session) MaxInactiveInterval() time.Duration {
	return sess.maxInactiveInterval
}

// IsNew reports whether the session has never been persisted.
func (sess *Session) IsNew() bool {
	return sess.isNew
}

// IsExpired reports whether the session is past lastAccessedTime +
// maxInactiveInterval.
func (sess *Session) IsExpired() bool {
	return sess.isExpiredAt(time.Now())
}

func (sess *Session) isExpiredAt(now time.Time) bool {
	if sess.maxInactiveInterval <= 0 {
		return false
	}
	return now.After(sess.lastAccessedTime.Add(sess.maxInactiveInterval))
}

// Attribute decodes and returns the named attribute value, or nil when the
// attribute is absent. Decode failures wrap [codec.ErrCodec] and are
// surfaced, never swallowed.
func (sess *Session) Attribute(name string) (any, error) {
	encoded, ok := sess.attributes[name]
	if !ok {
		return nil, nil
	}

	value, err := sess.store.codec.Decode(encoded)
	if err != nil {
		sess.store.metrics.Inc(MetricCodecError)
		return nil, err
	}
	return value, nil
}

// AttributeAs decodes the named attribute and asserts it to T. An absent or
// nil attribute yields the zero value of T without error; a type mismatch
// wraps [codec.ErrCodec].
func AttributeAs[T any](sess *Session, name string) (T, error) {
	var zero T

	value, err := sess.Attribute(name)
	if err != nil {
		return zero, err
	}
	if value == nil {
		return zero, nil
	}

	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("%w: attribute %q holds %T", codec.ErrCodec, name, value)
	}
	return typed, nil
}

// AttributeNames returns the current attribute names, sorted.
func (sess *Session) AttributeNames() []string {
	names := make([]string, 0, len(sess.attributes))
	for name := range sess.attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetAttribute encodes value and stores it under name, refreshing the last
// accessed time. Under [FlushModeImmediate] the session is saved before
// SetAttribute returns.
func (sess *Session) SetAttribute(ctx context.Context, name string, value any) error {
	encoded, err := sess.store.codec.Encode(value)
	if err != nil {
		sess.store.metrics.Inc(MetricCodecError)
		return err
	}

	sess.attributes[name] = encoded
	sess.dirty[name] = struct{}{}
	sess.lastAccessedTime = time.Now()
	sess.metaDirty = true

	return sess.flushIfImmediate(ctx)
}

// RemoveAttribute deletes the named attribute. Removing an absent attribute
// is a no-op that still refreshes the last accessed time.
func (sess *Session) RemoveAttribute(ctx context.Context, name string) error {
	delete(sess.attributes, name)
	sess.dirty[name] = struct{}{}
	sess.lastAccessedTime = time.Now()
	sess.metaDirty = true

	return sess.flushIfImmediate(ctx)
}

// Touch updates the last accessed time to now. Request-boundary callers
// invoke it once per request to renew the inactivity window.
func (sess *Session) Touch(ctx context.Context) error {
	return sess.SetLastAccessedTime(ctx, time.Now())
}

// SetLastAccessedTime records an explicit access time.
func (sess *Session) SetLastAccessedTime(ctx context.Context, t time.Time) error {
	sess.lastAccessedTime = t
	sess.metaDirty = true

	return sess.flushIfImmediate(ctx)
}

// SetMaxInactiveInterval overrides the inactivity window for this session.
// Zero or negative disables expiry.
func (sess *Session) SetMaxInactiveInterval(ctx context.Context, d time.Duration) error {
	sess.maxInactiveInterval = d
	sess.metaDirty = true

	return sess.flushIfImmediate(ctx)
}

// ChangeID rotates the session identifier to a fresh random UUID and returns
// it. The old row and its index entry are removed by the next persist.
func (sess *Session) ChangeID(ctx context.Context) (string, error) {
	sess.id = uuid.NewString()
	sess.metaDirty = true

	if err := sess.flushIfImmediate(ctx); err != nil {
		return "", err
	}
	return sess.id, nil
}

func (sess *Session) flushIfImmediate(ctx context.Context) error {
	if sess.store.config.Store.FlushMode != FlushModeImmediate {
		return nil
	}
	return sess.store.Save(ctx, sess)
}

// clearChangeFlags resets change tracking after a successful persist.
func (sess *Session) clearChangeFlags(indexedPrincipal string) {
	sess.isNew = false
	sess.metaDirty = false
	sess.dirty = make(map[string]struct{})
	sess.indexedPrincipal = indexedPrincipal
	sess.originalID = sess.id
}
