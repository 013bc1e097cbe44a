package gateway

import (
	"github.com/sonr-io/motr-gateway/core/config"
	"github.com/sonr-io/motr-gateway/core/cookie"
	"github.com/sonr-io/motr-gateway/core/email"
	"github.com/sonr-io/motr-gateway/core/otp"
	"github.com/sonr-io/motr-gateway/core/proxy"
	"github.com/sonr-io/motr-gateway/core/queue"
	"github.com/sonr-io/motr-gateway/core/server"
	"github.com/sonr-io/motr-gateway/core/session"
	"github.com/sonr-io/motr-gateway/integration/database/redis"
	"github.com/sonr-io/motr-gateway/integration/email/postmark"
	"github.com/sonr-io/motr-gateway/integration/email/smtp"
	"github.com/sonr-io/motr-gateway/pkg/ratelimiter"
)

// Deployment environments accepted in APP_ENV.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

type Config struct {
	Server    server.Config
	Redis     redis.Config
	Cookie    cookie.Config
	Session   session.Config
	OTP       otp.Config
	Email     email.Config
	Postmark  postmark.Config
	SMTP      smtp.Config
	Queue     queue.Config
	RateLimit ratelimiter.Config
	Identity  proxy.Config
	CORS      CORSConfig

	AppName          string `env:"APP_NAME" envDefault:"motr-orchestrator"`
	Env              string `env:"APP_ENV" envDefault:"development"`
	Version          string `env:"APP_VERSION" envDefault:"1.0.0"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	StaticDir        string `env:"STATIC_DIR" envDefault:"./dist"`
	BodyLimit        int64  `env:"HTTP_BODY_LIMIT" envDefault:"1048576"`
	RegistrySeedFile string `env:"REGISTRY_SEED_FILE"`
}

// CORSConfig controls cross-origin access to /api/*.
type CORSConfig struct {
	AllowOrigins     []string `env:"CORS_ALLOW_ORIGINS" envSeparator:","`
	AllowDomain      string   `env:"CORS_ALLOW_DOMAIN"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"600"`
}

// LoadConfig reads the process configuration from the environment and .env.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfig returns the configuration used when no variables are set.
func DefaultConfig() Config {
	return Config{
		Server:    server.DefaultConfig(),
		Cookie:    cookie.DefaultConfig(),
		Session:   session.DefaultConfig(),
		OTP:       otp.DefaultConfig(),
		Email:     email.DefaultConfig(),
		Queue:     queue.DefaultConfig(),
		RateLimit: ratelimiter.DefaultConfig(),
		Identity:  proxy.DefaultConfig(),
		CORS:      CORSConfig{AllowCredentials: true, MaxAge: 600},
		AppName:   "motr-orchestrator",
		Env:       EnvDevelopment,
		Version:   "1.0.0",
		LogLevel:  "info",
		StaticDir: "./dist",
		BodyLimit: 1 << 20,
	}
}

// IsProduction reports whether APP_ENV is production.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}
