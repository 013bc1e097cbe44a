package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonr-io/motr-gateway/core/handler"
	"github.com/sonr-io/motr-gateway/core/response"
	"github.com/sonr-io/motr-gateway/middleware"
	"github.com/sonr-io/motr-gateway/pkg/ratelimiter"
)

func TestRateLimit(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newLimited := func(t *testing.T, setHeaders bool) http.Handler {
		t.Helper()
		lim, err := ratelimiter.New(ratelimiter.Config{
			Capacity:       2,
			RefillRate:     2,
			RefillInterval: time.Minute,
		}, ratelimiter.WithClock(func() time.Time { return fixed }))
		require.NoError(t, err)

		r := newRouter(middleware.ClientIP[ctx]())
		r.With(middleware.RateLimit[ctx](middleware.RateLimitConfig{
			Limiter:    lim,
			SetHeaders: setHeaders,
		})).Post("/api/auth/send-otp", func(ctx) handler.Response {
			return response.JSON(map[string]bool{"success": true})
		})
		return r
	}
	post := func(ip string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/send-otp", nil)
		req.Header.Set("X-Forwarded-For", ip)
		return req
	}

	t.Run("denies after capacity with envelope", func(t *testing.T) {
		t.Parallel()
		r := newLimited(t, false)

		assert.Equal(t, http.StatusOK, serve(r, post("198.51.100.1")).Code)
		assert.Equal(t, http.StatusOK, serve(r, post("198.51.100.1")).Code)

		rec := serve(r, post("198.51.100.1"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
		assert.EqualValues(t, 30, body["remainingSeconds"])
		assert.NotEmpty(t, body["error"])
	})

	t.Run("keys are per client ip", func(t *testing.T) {
		t.Parallel()
		r := newLimited(t, false)
		serve(r, post("198.51.100.1"))
		serve(r, post("198.51.100.1"))
		assert.Equal(t, http.StatusOK, serve(r, post("198.51.100.2")).Code)
	})

	t.Run("headers", func(t *testing.T) {
		t.Parallel()
		r := newLimited(t, true)

		rec := serve(r, post("198.51.100.3"))
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
		assert.Empty(t, rec.Header().Get("Retry-After"))

		serve(r, post("198.51.100.3"))
		rec = serve(r, post("198.51.100.3"))
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	})

	t.Run("nil limiter panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { middleware.RateLimit[ctx](middleware.RateLimitConfig{}) })
	})
}
