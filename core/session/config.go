package session

import (
	"log/slog"
	"time"
)

// Config holds session settings.
type Config struct {
	CookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"session_id"`
	TTL        time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

// DefaultConfig returns the one-day session with cookie session_id.
func DefaultConfig() Config {
	return Config{
		CookieName: "session_id",
		TTL:        24 * time.Hour,
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithTTL sets both the record TTL and the maximum session age.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.cookieName = name
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithIDGenerator overrides how new session identifiers are produced.
func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) {
		if gen != nil {
			m.newID = gen
		}
	}
}

// WithLogger sets the manager logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewFromConfig creates a Manager using cfg; opts are applied last.
func NewFromConfig(cfg Config, store Store, cookies CookieCodec, opts ...Option) *Manager {
	all := append([]Option{WithTTL(cfg.TTL), WithCookieName(cfg.CookieName)}, opts...)
	return NewManager(store, cookies, all...)
}
