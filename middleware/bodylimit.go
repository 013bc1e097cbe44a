package middleware

import (
	"errors"
	"net/http"

	"github.com/sonr-io/motr-gateway/core/handler"
	"github.com/sonr-io/motr-gateway/core/response"
)

// Size units for BodyLimit.
const (
	KB int64 = 1 << 10
	MB int64 = 1 << 20
)

// DefaultBodyLimit caps JSON API bodies.
const DefaultBodyLimit = 1 * MB

// BodyLimitConfig configures the request body limit middleware.
type BodyLimitConfig struct {
	Skip    func(ctx handler.Context) bool
	MaxSize int64
}

// BodyLimit caps request bodies at maxSize bytes; maxSize <= 0 uses DefaultBodyLimit.
func BodyLimit[C handler.Context](maxSize int64) handler.Middleware[C] {
	return BodyLimitWithConfig[C](BodyLimitConfig{MaxSize: maxSize})
}

// BodyLimitWithConfig rejects a declared Content-Length over the limit with
// 413 up front and wraps the body in http.MaxBytesReader for chunked uploads.
// Handlers can detect the latter with IsBodyTooLarge.
func BodyLimitWithConfig[C handler.Context](cfg BodyLimitConfig) handler.Middleware[C] {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultBodyLimit
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			req := ctx.Request()
			if req.ContentLength > cfg.MaxSize {
				return response.Error(response.ErrRequestEntityTooLarge.
					WithDetail("limit", cfg.MaxSize).
					WithDetail("size", req.ContentLength))
			}
			if req.Body != nil && req.Body != http.NoBody {
				req.Body = http.MaxBytesReader(ctx.ResponseWriter(), req.Body, cfg.MaxSize)
			}
			return next(ctx)
		}
	}
}

// IsBodyTooLarge reports whether err came from reading past the body limit.
func IsBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
