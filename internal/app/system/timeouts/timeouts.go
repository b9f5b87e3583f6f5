// Package timeouts holds the deadlines applied to store and index calls.
//
// Handlers and workers wrap their context with one of these before touching
// Mongo or the search backend:
//   - Ping: health checks
//   - Lookup: single-record reads
//   - Write: create, update, delete plus the matching index write
//   - Search: index query plus reconciliation of every hit
//   - Reindex: a full rebuild of the index from the store
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing    = 2 * time.Second
	DefaultLookup  = 5 * time.Second
	DefaultWrite   = 10 * time.Second
	DefaultSearch  = 10 * time.Second
	DefaultReindex = 10 * time.Minute
)

// Config holds timeout values. Zero fields keep the current value.
type Config struct {
	Ping    time.Duration
	Lookup  time.Duration
	Write   time.Duration
	Search  time.Duration
	Reindex time.Duration
}

var defaults = Config{
	Ping:    DefaultPing,
	Lookup:  DefaultLookup,
	Write:   DefaultWrite,
	Search:  DefaultSearch,
	Reindex: DefaultReindex,
}

var (
	mu      sync.RWMutex
	current = defaults
)

func get(pick func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return pick(current)
}

func Ping() time.Duration    { return get(func(c Config) time.Duration { return c.Ping }) }
func Lookup() time.Duration  { return get(func(c Config) time.Duration { return c.Lookup }) }
func Write() time.Duration   { return get(func(c Config) time.Duration { return c.Write }) }
func Search() time.Duration  { return get(func(c Config) time.Duration { return c.Search }) }
func Reindex() time.Duration { return get(func(c Config) time.Duration { return c.Reindex }) }

// Configure overrides the non-zero values in cfg. Call it during startup,
// before handlers are built.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	merge(&current.Ping, cfg.Ping)
	merge(&current.Lookup, cfg.Lookup)
	merge(&current.Write, cfg.Write)
	merge(&current.Search, cfg.Search)
	merge(&current.Reindex, cfg.Reindex)
}

func merge(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

// Reset restores the defaults. Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = defaults
}

// Current returns the active configuration, for startup logging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// WithTimeout is context.WithTimeout whose cancel func logs a warning when
// the deadline was what ended the operation.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Search(), h.Log, "instructor search")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout))
		}
		cancel()
	}
}
