package gateway_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonr-io/motr-gateway/app/gateway"
)

func TestHealth(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()
		rec := env.do(http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{
			"status": "ok",
			"service": "motr-orchestrator",
			"environment": "development",
			"timestamp": "2025-06-01T12:00:00Z"
		}`, rec.Body.String())
	})

	t.Run("readiness fails while background workers are stopped", func(t *testing.T) {
		t.Parallel()
		rec := env.do(http.MethodGet, "/health/ready", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		body := decode(t, rec)
		assert.Equal(t, "unavailable", body["status"])
		errs, ok := body["errors"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, errs, "queue_worker")
		assert.Contains(t, errs, "queue_storage")
		assert.NotContains(t, errs, "kv")
	})

	t.Run("version", func(t *testing.T) {
		t.Parallel()
		rec := env.do(http.MethodGet, "/api/version", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"version":"1.0.0","environment":"development"}`, rec.Body.String())
	})
}

func TestMetrics(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health", "").Code)

	rec := env.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gateway_http_requests_total")
	assert.Contains(t, rec.Body.String(), `route="/health"`)
}

func TestPaymentManifest(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	t.Run("public host", func(t *testing.T) {
		t.Parallel()
		rec := env.do(http.MethodGet, "https://pay.example.com/pay", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{
			"default_applications": ["https://pay.example.com/site.webmanifest"],
			"supported_origins": ["https://pay.example.com", "https://sonr.id"]
		}`, rec.Body.String())
		assert.Equal(t, `<https://pay.example.com/pay/payment-manifest.json>; rel="payment-method-manifest"`,
			rec.Header().Get("Link"))
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("loopback host omits the production origin", func(t *testing.T) {
		t.Parallel()
		rec := env.do(http.MethodPost, "http://localhost:8080/pay/", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var m gateway.PaymentManifest
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
		assert.Equal(t, []string{"http://localhost:8080"}, m.SupportedOrigins)
	})

	t.Run("forwarded proto", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "http://sonr.id/pay", nil)
		req.Header.Set("X-Forwarded-Proto", "https, http")
		rec := httptest.NewRecorder()
		env.app.Handler().ServeHTTP(rec, req)

		var m gateway.PaymentManifest
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
		assert.Equal(t, []string{"https://sonr.id/site.webmanifest"}, m.DefaultApplications)
	})
}

func TestChains(t *testing.T) {
	t.Parallel()

	seed := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(seed, []byte(`{
		"chains": {
			"sonrtest_1-1": {"chainId":"sonrtest_1-1","name":"Sonr Testnet"},
			"cosmoshub-4": {"chainId":"cosmoshub-4","name":"Cosmos Hub"}
		},
		"assets": {
			"cosmoshub-4": [{"denom":"uatom"}],
			"orphan-1": [{"denom":"uorph"}]
		}
	}`), 0o600))

	env := newTestEnv(t, func(c *gateway.Config) { c.RegistrySeedFile = seed })

	t.Run("list", func(t *testing.T) {
		t.Parallel()
		rec := env.do(http.MethodGet, "/api/chains", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"chains":["cosmoshub-4","sonrtest_1-1"],"count":2}`, rec.Body.String())
	})

	t.Run("detail with assets", func(t *testing.T) {
		t.Parallel()
		rec := env.do(http.MethodGet, "/api/chains/cosmoshub-4", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{
			"chain": {"chainId":"cosmoshub-4","name":"Cosmos Hub"},
			"assets": [{"denom":"uatom"}]
		}`, rec.Body.String())
	})

	t.Run("detail without assets", func(t *testing.T) {
		t.Parallel()
		rec := env.do(http.MethodGet, "/api/chains/sonrtest_1-1", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{
			"chain": {"chainId":"sonrtest_1-1","name":"Sonr Testnet"},
			"assets": null
		}`, rec.Body.String())
	})

	t.Run("assets without chain", func(t *testing.T) {
		t.Parallel()
		rec := env.do(http.MethodGet, "/api/chains/orphan-1", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"chain":null,"assets":[{"denom":"uorph"}]}`, rec.Body.String())
	})

	t.Run("unknown chain", func(t *testing.T) {
		t.Parallel()
		rec := env.do(http.MethodGet, "/api/chains/nope", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Chain not found", decode(t, rec)["error"])
	})

	t.Run("missing id", func(t *testing.T) {
		t.Parallel()
		rec := env.do(http.MethodGet, "/api/chains/", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Chain ID required", decode(t, rec)["error"])
	})
}

func TestChainsEmptyRegistry(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/chains", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"chains":[],"count":0}`, rec.Body.String())
}

func TestCORS(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, func(c *gateway.Config) {
		c.CORS.AllowDomain = "sonr.id"
		c.CORS.AllowOrigins = []string{"http://localhost:5173"}
	})

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/session", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		env.app.Handler().ServeHTTP(rec, req)
		return rec
	}

	t.Run("subdomain preflight", func(t *testing.T) {
		t.Parallel()
		rec := preflight("https://console.sonr.id")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://console.sonr.id", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("exact origin preflight", func(t *testing.T) {
		t.Parallel()
		rec := preflight("http://localhost:5173")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("foreign origin", func(t *testing.T) {
		t.Parallel()
		rec := preflight("https://evil.example")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("simple request", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
		req.Header.Set("Origin", "https://profile.sonr.id")
		rec := httptest.NewRecorder()
		env.app.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://profile.sonr.id", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestBodyLimit(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, func(c *gateway.Config) { c.BodyLimit = 32 })

	rec := env.do(http.MethodPost, "/api/session/authenticate",
		`{"userId":"`+strings.Repeat("x", 64)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestIdentityProxy(t *testing.T) {
	t.Parallel()

	t.Run("forwards request and relays response", func(t *testing.T) {
		t.Parallel()

		type seen struct {
			method, path, query, body, header string
		}
		got := make(chan seen, 1)
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			got <- seen{r.Method, r.URL.Path, r.URL.RawQuery, string(b), r.Header.Get("X-Custom")}
			w.Header().Set("X-Upstream", "identity")
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"id":"did:sonr:1"}`)
		}))
		t.Cleanup(upstream.Close)

		env := newTestEnv(t, func(c *gateway.Config) { c.Identity.URL = upstream.URL })

		req := httptest.NewRequest(http.MethodPut, "/api/identity/did/register?step=2", strings.NewReader(`{"a":1}`))
		req.Header.Set("X-Custom", "yes")
		rec := httptest.NewRecorder()
		env.app.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "identity", rec.Header().Get("X-Upstream"))
		assert.JSONEq(t, `{"id":"did:sonr:1"}`, rec.Body.String())
		assert.Empty(t, rec.Header().Get("Content-Security-Policy"))

		s := <-got
		assert.Equal(t, seen{http.MethodPut, "/identity/did/register", "step=2", `{"a":1}`, "yes"}, s)
	})

	t.Run("keeps escaped path and forwarded headers", func(t *testing.T) {
		t.Parallel()

		type seen struct {
			path, xff string
		}
		got := make(chan seen, 1)
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got <- seen{r.URL.EscapedPath(), r.Header.Get("X-Forwarded-For")}
		}))
		t.Cleanup(upstream.Close)

		env := newTestEnv(t, func(c *gateway.Config) { c.Identity.URL = upstream.URL })

		req := httptest.NewRequest(http.MethodGet, "/api/identity/a%2Fb/init", nil)
		req.Header.Set("X-Forwarded-For", "1.2.3.4")
		rec := httptest.NewRecorder()
		env.app.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, seen{"/identity/a%2Fb/init", "1.2.3.4"}, <-got)
	})

	t.Run("empty identity id", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		rec := env.do(http.MethodGet, "/api/identity/", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Identity ID required"}`, rec.Body.String())
	})

	t.Run("unreachable upstream", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		rec := env.do(http.MethodGet, "/api/identity/status", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{
			"error": "Identity Service Error",
			"message": "Failed to communicate with identity service"
		}`, rec.Body.String())
	})
}
