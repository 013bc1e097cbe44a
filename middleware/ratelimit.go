package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/sonr-io/motr-gateway/core/handler"
	"github.com/sonr-io/motr-gateway/core/response"
	"github.com/sonr-io/motr-gateway/pkg/ratelimiter"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// Skip bypasses the limiter for matching requests.
	Skip func(ctx handler.Context) bool
	// Limiter is required.
	Limiter ratelimiter.RateLimiter
	// KeyExtractor defaults to ClientIPKey.
	KeyExtractor func(ctx handler.Context) string
	// ErrorHandler renders denied requests. Defaults to a 429 envelope with
	// success:false and remainingSeconds.
	ErrorHandler func(ctx handler.Context, result *ratelimiter.Result) handler.Response
	// SetHeaders adds X-RateLimit-* and Retry-After headers.
	SetHeaders bool
}

// RateLimit rejects requests whose key has exhausted its bucket.
// It panics when cfg.Limiter is nil.
func RateLimit[C handler.Context](cfg RateLimitConfig) handler.Middleware[C] {
	if cfg.Limiter == nil {
		panic("ratelimit middleware: limiter is required")
	}
	if cfg.KeyExtractor == nil {
		cfg.KeyExtractor = ClientIPKey
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultRateLimitError
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			result, err := cfg.Limiter.Allow(ctx, cfg.KeyExtractor(ctx))
			if err != nil {
				return response.Error(response.ErrInternalServerError.WithError(err))
			}

			var resp handler.Response
			if result.Allowed() {
				resp = next(ctx)
			} else {
				resp = cfg.ErrorHandler(ctx, result)
			}
			if cfg.SetHeaders {
				return withRateLimitHeaders(resp, result)
			}
			return resp
		}
	}
}

func defaultRateLimitError(_ handler.Context, result *ratelimiter.Result) handler.Response {
	return response.Error(response.ErrTooManyRequests.
		WithMessage("Too many requests. Please try again later.").
		WithDetail("success", false).
		WithDetail("remainingSeconds", retrySeconds(result)))
}

func retrySeconds(result *ratelimiter.Result) int {
	return int(math.Ceil(result.RetryAfter().Seconds()))
}

func withRateLimitHeaders(resp handler.Response, result *ratelimiter.Result) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
		if !result.Allowed() {
			h.Set("Retry-After", strconv.Itoa(max(1, retrySeconds(result))))
		}
		return resp(w, r)
	}
}
