package otp

import (
	"log/slog"
	"time"
)

// Config tunes the gate. MaxAttempts of zero disables the lockout.
type Config struct {
	ResendInterval time.Duration `env:"OTP_RESEND_INTERVAL" envDefault:"60s"`
	DefaultExpiry  time.Duration `env:"OTP_DEFAULT_EXPIRY" envDefault:"10m"`
	MaxExpiry      time.Duration `env:"OTP_MAX_EXPIRY" envDefault:"60m"`
	ValidatedTTL   time.Duration `env:"OTP_VALIDATED_TTL" envDefault:"24h"`
	MaxAttempts    int           `env:"OTP_MAX_ATTEMPTS" envDefault:"5"`
}

// DefaultConfig mirrors the env defaults.
func DefaultConfig() Config {
	return Config{
		ResendInterval: time.Minute,
		DefaultExpiry:  10 * time.Minute,
		MaxExpiry:      time.Hour,
		ValidatedTTL:   24 * time.Hour,
		MaxAttempts:    5,
	}
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// WithLogger sets the gate logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithResendInterval sets the minimum gap between sends to one address.
func WithResendInterval(d time.Duration) Option {
	return func(g *Gate) {
		if d > 0 {
			g.cfg.ResendInterval = d
		}
	}
}

// WithMaxAttempts sets the wrong-code limit; zero disables it.
func WithMaxAttempts(n int) Option {
	return func(g *Gate) {
		if n >= 0 {
			g.cfg.MaxAttempts = n
		}
	}
}

// NewFromConfig builds a Gate from cfg; opts are applied after it.
func NewFromConfig(cfg Config, store Store, enqueuer Enqueuer, opts ...Option) *Gate {
	return NewGate(store, enqueuer, append([]Option{withConfig(cfg)}, opts...)...)
}

func withConfig(cfg Config) Option {
	return func(g *Gate) {
		if cfg.ResendInterval > 0 {
			g.cfg.ResendInterval = cfg.ResendInterval
		}
		if cfg.DefaultExpiry > 0 {
			g.cfg.DefaultExpiry = cfg.DefaultExpiry
		}
		if cfg.MaxExpiry > 0 {
			g.cfg.MaxExpiry = cfg.MaxExpiry
		}
		if cfg.ValidatedTTL > 0 {
			g.cfg.ValidatedTTL = cfg.ValidatedTTL
		}
		if cfg.MaxAttempts >= 0 {
			g.cfg.MaxAttempts = cfg.MaxAttempts
		}
	}
}
