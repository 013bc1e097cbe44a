package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sonr-io/motr-gateway/core/handler"
	"github.com/sonr-io/motr-gateway/core/logger"
	"github.com/sonr-io/motr-gateway/pkg/clientip"
)

// LoggingConfig configures the access log middleware.
type LoggingConfig struct {
	// Skip bypasses logging for matching requests, e.g. /health probes.
	Skip func(ctx handler.Context) bool
	// Logger receives access records. Defaults to a discard logger.
	Logger *slog.Logger
	// SlowThreshold upgrades successful requests slower than this to WARN.
	SlowThreshold time.Duration
	// Now overrides the clock.
	Now func() time.Time
}

// Logging writes one access record per request.
func Logging[C handler.Context](log *slog.Logger) handler.Middleware[C] {
	return LoggingWithConfig[C](LoggingConfig{Logger: log})
}

// LoggingWithConfig logs method, path, status, duration, client IP and bytes
// written. 5xx responses log at ERROR, 4xx at WARN, the rest at INFO.
//
// Errors returned by handlers are rendered by the router after this
// middleware unwinds, so the status of an unwritten failure is taken from the
// error itself.
func LoggingWithConfig[C handler.Context](cfg LoggingConfig) handler.Middleware[C] {
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	log := cfg.Logger.With(logger.Component("http"))

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			start := cfg.Now()
			resp := next(ctx)

			return func(w http.ResponseWriter, r *http.Request) error {
				err := resp(w, r)
				elapsed := cfg.Now().Sub(start)
				status := responseStatus(w, err)

				attrs := []slog.Attr{
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.StatusCode(status),
					logger.Duration(elapsed),
					logger.ClientIP(clientip.GetIP(r)),
					logger.Host(r.Host),
				}
				if r.URL.RawQuery != "" {
					attrs = append(attrs, slog.String("query", r.URL.RawQuery))
				}
				if ua := r.UserAgent(); ua != "" {
					attrs = append(attrs, logger.UserAgent(ua))
				}
				if bw, ok := w.(interface{ BytesWritten() int64 }); ok {
					attrs = append(attrs, logger.BytesOut(bw.BytesWritten()))
				}
				if err != nil {
					attrs = append(attrs, logger.Error(err))
				}

				level := slog.LevelInfo
				switch {
				case status >= http.StatusInternalServerError:
					level = slog.LevelError
				case status >= http.StatusBadRequest:
					level = slog.LevelWarn
				case cfg.SlowThreshold > 0 && elapsed > cfg.SlowThreshold:
					level = slog.LevelWarn
					attrs = append(attrs, slog.Bool("slow", true))
				}

				log.LogAttrs(r.Context(), level, "http request", attrs...)
				return err
			}
		}
	}
}

// responseStatus reports the status already sent, or the one the error
// handler is about to send.
func responseStatus(w http.ResponseWriter, err error) int {
	if sw, ok := w.(interface{ Status() int }); ok && sw.Status() != 0 {
		return sw.Status()
	}
	if err == nil {
		return http.StatusOK
	}
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}
