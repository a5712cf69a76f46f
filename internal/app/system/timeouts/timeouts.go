// Package timeouts holds the deadlines handlers put on backend and
// database calls.
//
//   - Ping: health checks
//   - Short: single lookups (get note, get course, sign-in)
//   - Medium: lists and simple writes
//   - Long: writes touching several collections, dashboard summaries
//   - Upload: screenshot uploads
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 20 * time.Second
	DefaultUpload = 30 * time.Second
)

// Config holds timeout overrides. Zero fields keep the current value.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Upload time.Duration
}

var (
	mu      sync.RWMutex
	current = defaults()
)

func defaults() Config {
	return Config{
		Ping:   DefaultPing,
		Short:  DefaultShort,
		Medium: DefaultMedium,
		Long:   DefaultLong,
		Upload: DefaultUpload,
	}
}

func get(f func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return f(current)
}

func Ping() time.Duration   { return get(func(c Config) time.Duration { return c.Ping }) }
func Short() time.Duration  { return get(func(c Config) time.Duration { return c.Short }) }
func Medium() time.Duration { return get(func(c Config) time.Duration { return c.Medium }) }
func Long() time.Duration   { return get(func(c Config) time.Duration { return c.Long }) }
func Upload() time.Duration { return get(func(c Config) time.Duration { return c.Upload }) }

// Configure applies overrides. Call it once at startup before serving.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		current.Ping = cfg.Ping
	}
	if cfg.Short > 0 {
		current.Short = cfg.Short
	}
	if cfg.Medium > 0 {
		current.Medium = cfg.Medium
	}
	if cfg.Long > 0 {
		current.Long = cfg.Long
	}
	if cfg.Upload > 0 {
		current.Upload = cfg.Upload
	}
}

// FromBackend derives the tiers from the configured backend timeout, which
// becomes the Medium tier.
func FromBackend(d time.Duration) Config {
	if d <= 0 {
		return Config{}
	}
	return Config{
		Short:  d / 2,
		Medium: d,
		Long:   2 * d,
		Upload: 3 * d,
	}
}

// Reset restores the defaults. Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = defaults()
}

// Current returns the active configuration, for startup logging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// WithTimeout is context.WithTimeout whose cancel logs a warning when the
// deadline was hit.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "admin summary")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
