package proxy

import "time"

// Config holds the identity upstream settings.
type Config struct {
	URL string `env:"IDENTITY_URL" envDefault:"http://localhost:8787"`
	// Timeout bounds a whole round trip. Zero means no limit.
	Timeout time.Duration `env:"IDENTITY_TIMEOUT" envDefault:"0s"`
}

// DefaultConfig targets a local identity worker with no timeout.
func DefaultConfig() Config {
	return Config{URL: "http://localhost:8787"}
}

// NewFromConfig builds a Proxy from cfg; opts override it.
func NewFromConfig(cfg Config, opts ...Option) (*Proxy, error) {
	return New(cfg.URL, append([]Option{WithTimeout(cfg.Timeout)}, opts...)...)
}
