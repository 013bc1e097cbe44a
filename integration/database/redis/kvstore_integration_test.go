//go:build integration

package redis_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sonr-io/motr-gateway/core/kv"
	"github.com/sonr-io/motr-gateway/integration/database/redis"
)

var redisURL string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		panic(err)
	}
	redisURL = fmt.Sprintf("redis://%s:%s/0", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestKVStore(t *testing.T) {
	ctx := context.Background()
	client, err := redis.Connect(ctx, redis.Config{
		ConnectionURL:  redisURL,
		RetryAttempts:  3,
		RetryInterval:  100 * time.Millisecond,
		ConnectTimeout: 10 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := redis.NewKVStore(client, 10)
	require.NoError(t, store.Ping(ctx))

	t.Run("put get delete", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "session:abc", []byte(`{"authenticated":false}`), time.Hour))
		v, err := store.Get(ctx, "session:abc")
		require.NoError(t, err)
		assert.JSONEq(t, `{"authenticated":false}`, string(v))

		require.NoError(t, store.Delete(ctx, "session:abc"))
		_, err = store.Get(ctx, "session:abc")
		assert.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("ttl expires", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "otp:a@b.c", []byte("1"), time.Second))
		assert.Eventually(t, func() bool {
			_, err := store.Get(ctx, "otp:a@b.c")
			return err != nil
		}, 5*time.Second, 100*time.Millisecond)
	})

	t.Run("keys by prefix", func(t *testing.T) {
		for i := range 25 {
			require.NoError(t, store.Put(ctx, fmt.Sprintf("chain:%02d", i), []byte("{}"), 0))
		}
		require.NoError(t, store.Put(ctx, "asset:x", []byte("{}"), 0))

		keys, err := store.Keys(ctx, "chain:")
		require.NoError(t, err)
		assert.Len(t, keys, 25)
		assert.Equal(t, "chain:00", keys[0])
	})
}
