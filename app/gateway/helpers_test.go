package gateway_test

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sonr-io/motr-gateway/app/gateway"
	"github.com/sonr-io/motr-gateway/core/email"
	"github.com/sonr-io/motr-gateway/core/kv"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type outbox struct {
	mu   sync.Mutex
	sent []email.SendEmailParams
}

func (o *outbox) SendEmail(_ context.Context, p email.SendEmailParams) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, p)
	return nil
}

func (o *outbox) Sent() []email.SendEmailParams {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]email.SendEmailParams(nil), o.sent...)
}

func testBundles() map[string]fs.FS {
	bundles := make(map[string]fs.FS)
	for _, name := range []string{"auth", "console", "profile", "search"} {
		bundles[name] = fstest.MapFS{
			"index.html":    {Data: []byte("<html>" + name + "</html>")},
			"assets/app.js": {Data: []byte("// " + name)},
		}
	}
	return bundles
}

type testEnv struct {
	app    *gateway.App
	store  *kv.MemoryStore
	clock  *clock
	outbox *outbox
}

func newTestEnv(t *testing.T, mutate ...func(*gateway.Config)) *testEnv {
	t.Helper()

	cfg := gateway.DefaultConfig()
	cfg.Identity.URL = "http://127.0.0.1:1"
	cfg.Email.DevDir = t.TempDir()
	for _, m := range mutate {
		m(&cfg)
	}

	clk := &clock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := kv.NewMemoryStore(kv.WithClock(clk.Now))
	box := &outbox{}

	app, err := gateway.New(context.Background(), cfg,
		gateway.WithClock(clk.Now),
		gateway.WithStore(store),
		gateway.WithEmailSender(box),
		gateway.WithBundles(testBundles()),
		gateway.WithSharedAssets(fstest.MapFS{"logo.svg": {Data: []byte("<svg/>")}}),
	)
	require.NoError(t, err)

	return &testEnv{app: app, store: store, clock: clk, outbox: box}
}

// newTestEnvWithoutBundles reads bundles from an empty STATIC_DIR.
func newTestEnvWithoutBundles(t *testing.T) *testEnv {
	t.Helper()

	cfg := gateway.DefaultConfig()
	cfg.Identity.URL = "http://127.0.0.1:1"
	cfg.StaticDir = t.TempDir()

	box := &outbox{}
	app, err := gateway.New(context.Background(), cfg, gateway.WithEmailSender(box))
	require.NoError(t, err)
	return &testEnv{app: app, outbox: box}
}

// do serves one request. target may be an absolute URL to set the host.
func (e *testEnv) do(method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.app.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_id" {
			return c
		}
	}
	t.Fatalf("no session cookie in response %d", rec.Code)
	return nil
}

func hasSessionCookie(rec *httptest.ResponseRecorder) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_id" {
			return true
		}
	}
	return false
}
