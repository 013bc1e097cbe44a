package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sonr-io/motr-gateway/core/health"
	"github.com/sonr-io/motr-gateway/core/logger"
	"github.com/sonr-io/motr-gateway/core/router"
)

type ctx = *router.Context

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLiveness(t *testing.T) {
	t.Parallel()

	r := router.New[ctx]()
	r.Get("/health", health.Liveness[ctx](health.Info{
		Service:     "motr-orchestrator",
		Environment: "production",
		Now:         func() time.Time { return time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC) },
	}))

	rec := get(r, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"motr-orchestrator","environment":"production","timestamp":"2025-03-04T05:06:07Z"}`, rec.Body.String())
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	ok := health.Check{Name: "kv", Fn: func(context.Context) error { return nil }}
	bad := health.Check{Name: "queue", Fn: func(context.Context) error { return errors.New("worker not running") }}
	slow := health.Check{Name: "redis", Fn: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}

	t.Run("all pass", func(t *testing.T) {
		t.Parallel()
		r := router.New[ctx]()
		r.Get("/ready", health.Readiness[ctx](logger.Discard(), ok))
		rec := get(r, "/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
	})

	t.Run("failure reported by name", func(t *testing.T) {
		t.Parallel()
		r := router.New[ctx]()
		r.Get("/ready", health.Readiness[ctx](nil, ok, bad))
		rec := get(r, "/ready")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"status":"unavailable","errors":{"queue":"worker not running"}}`, rec.Body.String())
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()
		failed := health.Run(context.Background(), 20*time.Millisecond, ok, slow)
		assert.Len(t, failed, 1)
		assert.ErrorIs(t, failed["redis"], context.DeadlineExceeded)
	})
}
