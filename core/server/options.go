package server

import (
	"log/slog"
	"time"
)

// Option configures a Server. Zero and negative values keep the default.
type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithReadHeaderTimeout(d time.Duration) Option {
	return func(s *Server) { setPositive(&s.readHeaderTimeout, d) }
}

func WithReadTimeout(d time.Duration) Option {
	return func(s *Server) { setPositive(&s.readTimeout, d) }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) { setPositive(&s.writeTimeout, d) }
}

func WithIdleTimeout(d time.Duration) Option {
	return func(s *Server) { setPositive(&s.idleTimeout, d) }
}

// WithShutdownTimeout bounds the graceful drain in Stop.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { setPositive(&s.shutdown, d) }
}

func WithMaxHeaderBytes(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxHeaderBytes = n
		}
	}
}

func setPositive(dst *time.Duration, d time.Duration) {
	if d > 0 {
		*dst = d
	}
}
