package goSession

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/goSession/codec"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hash field names of a session row. Attribute fields carry the "a:" prefix
// so they can never collide with metadata.
const (
	fieldCreated   = "ct" // creation time, epoch millis
	fieldAccessed  = "la" // last accessed time, epoch millis
	fieldInterval  = "mi" // max inactive interval, seconds
	fieldPrincipal = "pn" // principal currently materialized in the index

	attrFieldPrefix = "a:"
)

const deleteSessionScript = `
local pn = redis.call("HGET", KEYS[1], "pn")
local existed = redis.call("DEL", KEYS[1])
if pn then
  redis.call("SREM", ARGV[1] .. pn, ARGV[2])
end
return existed
`

var deleteSessionLua = redis.NewScript(deleteSessionScript)

// Store persists sessions in Redis: one hash per session row plus one set
// per principal name as the secondary index. Store methods are safe for
// concurrent use; the Sessions they hand out are not.
//
// Construct through [Builder.Build].
type Store struct {
	rdb     redis.UniversalClient
	codec   codec.Codec
	logger  *slog.Logger
	metrics *Metrics
	config  Config
}

func (s *Store) keyPrefix() string {
	return s.config.Store.KeyPrefix + ":" + s.config.Store.TableName + ":"
}

func (s *Store) key(id string) string {
	return s.keyPrefix() + id
}

func (s *Store) principalKeyPrefix() string {
	return s.config.Store.KeyPrefix + ":" + s.config.Store.TableName + "_by_principal:"
}

func (s *Store) principalKey(principal string) string {
	return s.principalKeyPrefix() + principal
}

// unavailable wraps an infrastructure failure and counts it.
func (s *Store) unavailable(err error) error {
	s.metrics.Inc(MetricStoreError)
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// CreateSession allocates a session with a fresh random 128-bit identifier,
// creation and last-accessed times of now, and the configured default
// inactivity window. Under [FlushModeImmediate] the row is persisted before
// CreateSession returns.
func (s *Store) CreateSession(ctx context.Context) (*Session, error) {
	now := time.Now()
	sess := &Session{
		store:               s,
		id:                  uuid.NewString(),
		creationTime:        now,
		lastAccessedTime:    now,
		maxInactiveInterval: s.config.Store.DefaultMaxInactiveInterval,
		attributes:          make(map[string]string),
		isNew:               true,
		dirty:               make(map[string]struct{}),
	}

	s.metrics.Inc(MetricSessionCreated)

	if err := sess.flushIfImmediate(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}

// FindByID reads the session row. An absent id yields (nil, nil). A row that
// is expired at read time is deleted as a side effect and also yields
// (nil, nil): no caller ever observes an expired session.
func (s *Store) FindByID(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, nil
	}

	row, err := s.rdb.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, s.unavailable(err)
	}
	if len(row) == 0 {
		s.metrics.Inc(MetricSessionMissed)
		return nil, nil
	}

	sess, err := s.materialize(id, row)
	if err != nil {
		return nil, err
	}

	if sess.IsExpired() {
		s.metrics.Inc(MetricSessionExpiredOnRead)
		if err := s.DeleteByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, nil
	}

	s.metrics.Inc(MetricSessionLoaded)
	return sess, nil
}

// Save persists the session. New and id-rotated sessions are written as a
// full row; otherwise only the fields recorded in the delta are touched.
// A save with an empty delta is a no-op, so redundant calls are safe.
// The principal index is maintained in the same MULTI/EXEC pipeline as the
// row write. On success the delta is cleared and the session is no longer
// new.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	principal := s.resolvePrincipal(sess)
	rotated := sess.originalID != "" && sess.originalID != sess.id

	if sess.isNew || rotated {
		if err := s.saveFull(ctx, sess, principal, rotated); err != nil {
			return err
		}
	} else {
		saved, err := s.savePartial(ctx, sess, principal)
		if err != nil {
			return err
		}
		if !saved {
			return nil
		}
	}

	sess.clearChangeFlags(principal)
	return nil
}

func (s *Store) saveFull(ctx context.Context, sess *Session, principal string, rotated bool) error {
	key := s.key(sess.id)

	fields := map[string]any{
		fieldCreated:  strconv.FormatInt(sess.creationTime.UnixMilli(), 10),
		fieldAccessed: strconv.FormatInt(sess.lastAccessedTime.UnixMilli(), 10),
		fieldInterval: strconv.FormatInt(int64(sess.maxInactiveInterval/time.Second), 10),
	}
	if principal != "" {
		fields[fieldPrincipal] = principal
	}
	for name, value := range sess.attributes {
		fields[attrFieldPrefix+name] = value
	}

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if rotated {
			pipe.Del(ctx, s.key(sess.originalID))
			if sess.indexedPrincipal != "" {
				pipe.SRem(ctx, s.principalKey(sess.indexedPrincipal), sess.originalID)
			}
		}
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		if principal != "" {
			pipe.SAdd(ctx, s.principalKey(principal), sess.id)
		}
		return nil
	})
	if err != nil {
		return s.unavailable(err)
	}

	s.metrics.Inc(MetricSessionInserted)
	return nil
}

// savePartial writes only the delta. It reports false when there was nothing
// to write.
func (s *Store) savePartial(ctx context.Context, sess *Session, principal string) (bool, error) {
	if !sess.metaDirty && len(sess.dirty) == 0 && principal == sess.indexedPrincipal {
		return false, nil
	}

	key := s.key(sess.id)
	sets := make(map[string]any)
	var dels []string

	if sess.metaDirty {
		sets[fieldAccessed] = strconv.FormatInt(sess.lastAccessedTime.UnixMilli(), 10)
		sets[fieldInterval] = strconv.FormatInt(int64(sess.maxInactiveInterval/time.Second), 10)
	}
	for name := range sess.dirty {
		if value, ok := sess.attributes[name]; ok {
			sets[attrFieldPrefix+name] = value
		} else {
			dels = append(dels, attrFieldPrefix+name)
		}
	}
	if principal != sess.indexedPrincipal {
		if principal != "" {
			sets[fieldPrincipal] = principal
		} else {
			dels = append(dels, fieldPrincipal)
		}
	}

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(sets) > 0 {
			pipe.HSet(ctx, key, sets)
		}
		if len(dels) > 0 {
			pipe.HDel(ctx, key, dels...)
		}
		if principal != sess.indexedPrincipal {
			if sess.indexedPrincipal != "" {
				pipe.SRem(ctx, s.principalKey(sess.indexedPrincipal), sess.id)
			}
			if principal != "" {
				pipe.SAdd(ctx, s.principalKey(principal), sess.id)
			}
		}
		return nil
	})
	if err != nil {
		return false, s.unavailable(err)
	}

	s.metrics.Inc(MetricSessionUpdated)
	return true, nil
}

// DeleteByID removes the session row and its principal index entry in one
// atomic script. Deleting an absent id is a no-op.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	existed, err := deleteSessionLua.Run(ctx, s.rdb, []string{s.key(id)}, s.principalKeyPrefix(), id).Result()
	if err != nil {
		return s.unavailable(err)
	}
	if n, ok := existed.(int64); ok && n > 0 {
		s.metrics.Inc(MetricSessionDeleted)
	}
	return nil
}

// FindByPrincipal returns all non-expired sessions whose current principal
// resolution equals principal, keyed by session id. No match yields an empty
// map, never nil and never an error. Stale or expired index entries are
// skipped; their cleanup belongs to the read path and the sweeper.
func (s *Store) FindByPrincipal(ctx context.Context, principal string) (map[string]*Session, error) {
	s.metrics.Inc(MetricPrincipalLookup)

	sessions := make(map[string]*Session)
	if principal == "" {
		return sessions, nil
	}

	ids, err := s.rdb.SMembers(ctx, s.principalKey(principal)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return sessions, nil
		}
		return nil, s.unavailable(err)
	}
	if len(ids) == 0 {
		return sessions, nil
	}

	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, s.key(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, s.unavailable(err)
	}

	now := time.Now()
	for i, cmd := range cmds {
		row, cmdErr := cmd.Result()
		if cmdErr != nil {
			return nil, s.unavailable(cmdErr)
		}
		if len(row) == 0 {
			continue
		}

		sess, err := s.materialize(ids[i], row)
		if err != nil {
			return nil, err
		}
		if sess.isExpiredAt(now) {
			continue
		}
		sessions[sess.id] = sess
	}

	return sessions, nil
}

// SweepExpired scans the session keyspace and deletes every row whose
// computed expiry time is in the past, returning how many rows it evicted.
// A single row's failure does not abort the sweep; failures accumulate and
// are reported as one joined error. A session renewed between scan and
// delete may still be swept (documented race; the next access recreates it).
func (s *Store) SweepExpired(ctx context.Context) (int, error) {
	s.metrics.Inc(MetricSweepRun)

	var (
		cursor uint64
		swept  int
		errs   []error
	)

	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, s.keyPrefix()+"*", s.config.Store.ScanBatchSize).Result()
		if err != nil {
			s.metrics.Inc(MetricSweepFailed)
			errs = append(errs, s.unavailable(err))
			return swept, errors.Join(errs...)
		}

		expired, batchErrs := s.expiredInBatch(ctx, keys)
		errs = append(errs, batchErrs...)

		for _, id := range expired {
			if err := s.DeleteByID(ctx, id); err != nil {
				errs = append(errs, fmt.Errorf("sweep delete %s: %w", id, err))
				continue
			}
			swept++
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	s.metrics.Add(MetricSweepEvicted, uint64(swept))
	if len(errs) > 0 {
		s.metrics.Inc(MetricSweepFailed)
		return swept, errors.Join(errs...)
	}
	return swept, nil
}

// expiredInBatch reads the expiry metadata of a SCAN batch and returns the
// ids of rows already past their computed expiry.
func (s *Store) expiredInBatch(ctx context.Context, keys []string) ([]string, []error) {
	if len(keys) == 0 {
		return nil, nil
	}

	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.SliceCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.HMGet(ctx, key, fieldAccessed, fieldInterval)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, []error{s.unavailable(err)}
	}

	now := time.Now()
	var (
		expired []string
		errs    []error
	)
	for i, cmd := range cmds {
		values, err := cmd.Result()
		if err != nil {
			errs = append(errs, s.unavailable(err))
			continue
		}

		accessed, okAccessed := values[0].(string)
		interval, okInterval := values[1].(string)
		if !okAccessed || !okInterval {
			// Row vanished mid-scan, or the key is not a session hash.
			continue
		}

		accessedMillis, errAccessed := strconv.ParseInt(accessed, 10, 64)
		intervalSeconds, errInterval := strconv.ParseInt(interval, 10, 64)
		if errAccessed != nil || errInterval != nil {
			errs = append(errs, fmt.Errorf("%w: %s", ErrSessionCorrupt, keys[i]))
			continue
		}

		if expiredAt(accessedMillis, intervalSeconds, now) {
			expired = append(expired, strings.TrimPrefix(keys[i], s.keyPrefix()))
		}
	}

	return expired, errs
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return time.Since(start), s.unavailable(err)
	}
	return time.Since(start), nil
}

// MetricsSnapshot returns a point-in-time copy of the operation counters.
func (s *Store) MetricsSnapshot() MetricsSnapshot {
	return s.metrics.Snapshot()
}

func (s *Store) materialize(id string, row map[string]string) (*Session, error) {
	created, errCreated := strconv.ParseInt(row[fieldCreated], 10, 64)
	accessed, errAccessed := strconv.ParseInt(row[fieldAccessed], 10, 64)
	interval, errInterval := strconv.ParseInt(row[fieldInterval], 10, 64)
	if errCreated != nil || errAccessed != nil || errInterval != nil {
		return nil, fmt.Errorf("%w: %s: bad metadata", ErrSessionCorrupt, id)
	}

	sess := &Session{
		store:               s,
		id:                  id,
		creationTime:        time.UnixMilli(created),
		lastAccessedTime:    time.UnixMilli(accessed),
		maxInactiveInterval: time.Duration(interval) * time.Second,
		attributes:          make(map[string]string),
		dirty:               make(map[string]struct{}),
		indexedPrincipal:    row[fieldPrincipal],
		originalID:          id,
	}
	for field, value := range row {
		if name, ok := strings.CutPrefix(field, attrFieldPrefix); ok {
			sess.attributes[name] = value
		}
	}

	return sess, nil
}

// expiredAt computes expiry from the stored wire form. maxInactiveSeconds of
// zero or less means the session never expires; the instant exactly at
// expiry is not yet expired.
func expiredAt(lastAccessedMillis, maxInactiveSeconds int64, now time.Time) bool {
	if maxInactiveSeconds <= 0 {
		return false
	}
	expiry := time.UnixMilli(lastAccessedMillis).Add(time.Duration(maxInactiveSeconds) * time.Second)
	return now.After(expiry)
}
