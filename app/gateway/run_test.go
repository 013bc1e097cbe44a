package gateway_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonr-io/motr-gateway/app/gateway"
	"github.com/sonr-io/motr-gateway/core/kv"
	"github.com/sonr-io/motr-gateway/core/otp"
	"github.com/sonr-io/motr-gateway/core/server"
)

func TestRun(t *testing.T) {
	t.Parallel()

	cfg := gateway.DefaultConfig()
	cfg.Identity.URL = "http://127.0.0.1:1"
	cfg.Queue.PollInterval = 10 * time.Millisecond

	store := kv.NewMemoryStore()
	box := &outbox{}
	srv := server.New("127.0.0.1:0", server.WithShutdownTimeout(time.Second))

	app, err := gateway.New(context.Background(), cfg,
		gateway.WithStore(store),
		gateway.WithEmailSender(box),
		gateway.WithServer(srv),
		gateway.WithBundles(testBundles()),
		gateway.WithSharedAssets(fstest.MapFS{}),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	t.Cleanup(cancel)

	addrCtx, addrCancel := context.WithTimeout(ctx, 5*time.Second)
	defer addrCancel()
	addr, err := srv.Addr(addrCtx)
	require.NoError(t, err)
	base := "http://" + addr

	post := func(path, body string) (int, string) {
		resp, err := http.Post(base+path, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(b)
	}

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health/ready")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	status, body := post("/api/auth/send-otp", `{"email":"ivy@example.com","purpose":"login"}`)
	require.Equal(t, http.StatusOK, status, body)

	require.Eventually(t, func() bool { return len(box.Sent()) == 1 }, 5*time.Second, 10*time.Millisecond)
	sent := box.Sent()[0]
	assert.Equal(t, "ivy@example.com", sent.SendTo)
	assert.Equal(t, "otp-login", sent.Tag)

	var rec otp.Record
	require.Eventually(t, func() bool {
		rec, err = kv.GetJSON[otp.Record](context.Background(), store, otp.KeyPrefix+"ivy@example.com")
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
	assert.Len(t, rec.Code, 6)
	assert.Contains(t, sent.BodyHTML, rec.Code)

	status, body = post("/api/auth/send-otp", `{"email":"ivy@example.com"}`)
	assert.Equal(t, http.StatusTooManyRequests, status, body)

	status, body = post("/api/auth/verify-otp", `{"email":"ivy@example.com","code":"`+rec.Code+`"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"success":true,"message":"OTP verified successfully"}`, body)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
