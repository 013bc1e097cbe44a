package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sonr-io/motr-gateway/core/handler"
	"github.com/sonr-io/motr-gateway/core/response"
	"github.com/sonr-io/motr-gateway/middleware"
)

func TestCORS(t *testing.T) {
	t.Parallel()

	build := func(cfg middleware.CORSConfig) http.Handler {
		r := newRouter(middleware.CORSWithConfig[ctx](cfg))
		ok := func(ctx) handler.Response { return response.JSON(map[string]bool{"ok": true}) }
		r.Get("/api/chains", ok)
		r.Options("/api/chains", func(ctx) handler.Response { return response.Status(http.StatusOK) })
		return r
	}

	t.Run("wildcard on simple request", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/api/chains", nil)
		req.Header.Set("Origin", "https://anywhere.example")
		rec := serve(build(middleware.CORSConfig{}), req)

		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, middleware.RequestIDHeader, rec.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("preflight allowed", func(t *testing.T) {
		t.Parallel()
		h := build(middleware.CORSConfig{
			AllowOrigins:     []string{"https://console.sonr.id"},
			AllowCredentials: true,
			MaxAge:           600,
		})
		req := httptest.NewRequest(http.MethodOptions, "/api/chains", nil)
		req.Header.Set("Origin", "https://console.sonr.id")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := serve(h, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://console.sonr.id", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	})

	t.Run("preflight from unknown origin is forbidden", func(t *testing.T) {
		t.Parallel()
		h := build(middleware.CORSConfig{AllowOrigins: []string{"https://console.sonr.id"}})
		req := httptest.NewRequest(http.MethodOptions, "/api/chains", nil)
		req.Header.Set("Origin", "https://evil.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := serve(h, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("subdomain matcher", func(t *testing.T) {
		t.Parallel()
		match := middleware.AllowOriginSubdomain("sonr.id")
		assert.True(t, match("https://sonr.id"))
		assert.True(t, match("https://console.sonr.id:8443"))
		assert.False(t, match("https://notsonr.id"))
		assert.False(t, match("not a url"))

		h := build(middleware.CORSConfig{AllowOriginFunc: match})
		req := httptest.NewRequest(http.MethodGet, "/api/chains", nil)
		req.Header.Set("Origin", "https://profile.sonr.id")
		assert.Equal(t, "https://profile.sonr.id", serve(h, req).Header().Get("Access-Control-Allow-Origin"))
	})
}
