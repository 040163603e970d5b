package goSession

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/MrEthical07/goSession/codec"
	"github.com/redis/go-redis/v9"
)

// Builder assembles a [Store]. A Builder is single-use: Build fails on the
// second call. Construction is allocation-only; no I/O happens until the
// first Store operation.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	codec  codec.Codec
	logger *slog.Logger

	built bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the backing Redis client. Required.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithCodec overrides the attribute codec. Defaults to [codec.Gob].
func (b *Builder) WithCodec(c codec.Codec) *Builder {
	b.codec = c
	return b
}

// WithLogger sets the structured logger used by the store and sweeper.
// Defaults to slog.Default.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithFlushMode overrides the flush mode of the current configuration.
func (b *Builder) WithFlushMode(mode FlushMode) *Builder {
	b.config.Store.FlushMode = mode
	return b
}

// WithMetricsEnabled toggles operation counters on the current configuration.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and returns the assembled [Store].
func (b *Builder) Build() (*Store, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}

	cfg := b.config
	cfg.Store.TableName = strings.TrimSpace(cfg.Store.TableName)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := b.codec
	if c == nil {
		c = codec.Gob{}
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		rdb:     b.redis,
		codec:   c,
		logger:  logger,
		metrics: NewMetrics(cfg.Metrics),
		config:  cfg,
	}, nil
}
