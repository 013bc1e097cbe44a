package ratelimiter

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/sonr-io/motr-gateway/core/logger"
)

// RateLimiter decides whether a request identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

type entry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Limiter keeps an in-memory token bucket per key.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry

	cfg     Config
	limit   rate.Limit
	now     func() time.Time
	logger  *slog.Logger
	running atomic.Bool
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets the logger used by the cleanup loop.
func WithLogger(lg *slog.Logger) Option {
	return func(l *Limiter) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// New validates cfg and returns a keyed limiter.
func New(cfg Config, opts ...Option) (*Limiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l := &Limiter{
		entries: make(map[string]*entry),
		cfg:     cfg,
		limit:   cfg.limit(),
		now:     time.Now,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Allow consumes one token from key's bucket.
func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(ErrContextCancelled, err)
	}
	if key == "" {
		return nil, ErrEmptyKey
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.cfg.Capacity)}
		l.entries[key] = e
	}
	e.lastAccess = now

	res := &Result{Limit: l.cfg.Capacity, allowed: e.limiter.AllowN(now, 1)}
	if !res.allowed {
		r := e.limiter.ReserveN(now, 1)
		res.retryAfter = r.DelayFrom(now)
		r.CancelAt(now)
	}

	tokens := e.limiter.TokensAt(now)
	res.Remaining = max(0, int(math.Floor(tokens)))
	missing := float64(l.cfg.Capacity) - tokens
	res.ResetAt = now.Add(time.Duration(missing / float64(l.limit) * float64(time.Second)))
	return res, nil
}

// Reset forgets key's bucket.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	delete(l.entries, key)
	l.mu.Unlock()
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// RemoveStale drops buckets idle for longer than StaleAfter and returns how
// many were removed.
func (l *Limiter) RemoveStale() int {
	if l.cfg.StaleAfter <= 0 {
		return 0
	}
	cutoff := l.now().Add(-l.cfg.StaleAfter)

	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for key, e := range l.entries {
		if e.lastAccess.Before(cutoff) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Run returns a function for errgroup.Go that removes stale buckets every
// CleanupInterval until ctx is cancelled.
func (l *Limiter) Run(ctx context.Context) func() error {
	return func() error {
		if l.cfg.CleanupInterval <= 0 {
			<-ctx.Done()
			return nil
		}
		l.running.Store(true)
		defer l.running.Store(false)

		ticker := time.NewTicker(l.cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if n := l.RemoveStale(); n > 0 {
					l.logger.DebugContext(ctx, "removed stale rate limit buckets",
						logger.Component("ratelimiter"),
						slog.Int("count", n))
				}
			}
		}
	}
}

// Healthcheck fails when cleanup is configured but Run is not active.
func (l *Limiter) Healthcheck(context.Context) error {
	if l.cfg.CleanupInterval > 0 && !l.running.Load() {
		return ErrNotRunning
	}
	return nil
}
