package middleware_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonr-io/motr-gateway/core/handler"
	"github.com/sonr-io/motr-gateway/core/logger"
	"github.com/sonr-io/motr-gateway/core/response"
	"github.com/sonr-io/motr-gateway/core/router"
	"github.com/sonr-io/motr-gateway/middleware"
)

type ctx = *router.Context

func newRouter(mws ...handler.Middleware[ctx]) router.Router[ctx] {
	return router.New(
		router.WithErrorHandler(response.JSONErrorHandler[ctx]()),
		router.WithMiddleware(mws...),
	)
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates uuid and stores it", func(t *testing.T) {
		t.Parallel()
		var seen string
		r := newRouter(middleware.RequestID[ctx]())
		r.Get("/", func(c ctx) handler.Response {
			seen, _ = middleware.GetRequestID(c)
			return response.Status(http.StatusOK)
		})

		rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		id := rec.Header().Get(middleware.RequestIDHeader)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, seen)
	})

	t.Run("incoming id ignored unless trusted", func(t *testing.T) {
		t.Parallel()
		r := newRouter(middleware.RequestID[ctx]())
		r.Get("/", func(ctx) handler.Response { return response.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.RequestIDHeader, "edge-123")
		assert.NotEqual(t, "edge-123", serve(r, req).Header().Get(middleware.RequestIDHeader))
	})

	t.Run("trusted incoming id reused", func(t *testing.T) {
		t.Parallel()
		r := newRouter(middleware.RequestIDWithConfig[ctx](middleware.RequestIDConfig{TrustIncoming: true}))
		r.Get("/", func(ctx) handler.Response { return response.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.RequestIDHeader, "edge-123")
		assert.Equal(t, "edge-123", serve(r, req).Header().Get(middleware.RequestIDHeader))

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.RequestIDHeader, strings.Repeat("x", 200))
		assert.NotEqual(t, strings.Repeat("x", 200), serve(r, req).Header().Get(middleware.RequestIDHeader))
	})

	t.Run("extractor feeds logger", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(
			logger.WithJSONFormatter(),
			logger.WithOutput(&buf),
			logger.WithContextExtractors(middleware.RequestIDExtractor),
		)

		r := newRouter(middleware.RequestIDWithConfig[ctx](middleware.RequestIDConfig{
			Generator: func() string { return "fixed-id" },
		}))
		r.Get("/", func(c ctx) handler.Response {
			log.InfoContext(c, "inside")
			return response.Status(http.StatusOK)
		})
		serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Contains(t, buf.String(), `"request_id":"fixed-id"`)
	})

	t.Run("missing id", func(t *testing.T) {
		t.Parallel()
		_, ok := middleware.GetRequestID(context.Background())
		assert.False(t, ok)
		_, ok = middleware.RequestIDExtractor(context.Background())
		assert.False(t, ok)
	})
}
