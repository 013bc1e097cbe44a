package ratelimiter

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Config describes one token bucket per key: Capacity tokens, refilled at
// RefillRate tokens every RefillInterval.
type Config struct {
	Capacity        int           `env:"RATE_LIMIT_CAPACITY" envDefault:"10"`
	RefillRate      int           `env:"RATE_LIMIT_REFILL_RATE" envDefault:"10"`
	RefillInterval  time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"1m"`
	CleanupInterval time.Duration `env:"RATE_LIMIT_CLEANUP_INTERVAL" envDefault:"5m"`
	StaleAfter      time.Duration `env:"RATE_LIMIT_STALE_AFTER" envDefault:"1h"`
}

// DefaultConfig allows ten requests per minute per key.
func DefaultConfig() Config {
	return Config{
		Capacity:        10,
		RefillRate:      10,
		RefillInterval:  time.Minute,
		CleanupInterval: 5 * time.Minute,
		StaleAfter:      time.Hour,
	}
}

// Validate checks that the bucket parameters are positive.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", ErrInvalidConfig)
	}
	if c.RefillRate <= 0 {
		return fmt.Errorf("%w: refill rate must be positive", ErrInvalidConfig)
	}
	if c.RefillInterval <= 0 {
		return fmt.Errorf("%w: refill interval must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c Config) limit() rate.Limit {
	return rate.Limit(float64(c.RefillRate) / c.RefillInterval.Seconds())
}
