package redis

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sonr-io/motr-gateway/core/kv"
)

// KVStore implements kv.Store on Redis. Expiry is delegated to Redis.
type KVStore struct {
	client    redis.UniversalClient
	scanBatch int64
}

// NewKVStore wraps client. scanBatch sets the SCAN COUNT hint used by Keys.
func NewKVStore(client redis.UniversalClient, scanBatch int) *KVStore {
	if scanBatch <= 0 {
		scanBatch = 1000
	}
	return &KVStore{client: client, scanBatch: int64(scanBatch)}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, wrap("get", key, err)
	}
	return v, nil
}

func (s *KVStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return kv.ErrEmptyKey
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return wrap("set", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return wrap("del", key, err)
	}
	return nil
}

func (s *KVStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	match := escapePattern(prefix) + "*"

	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := s.client.Scan(ctx, cursor, match, s.scanBatch).Result()
		if err != nil {
			return nil, wrap("scan", prefix, err)
		}
		keys = append(keys, batch...)
		if cursor = next; cursor == 0 {
			break
		}
	}

	// SCAN may return a key more than once.
	slices.Sort(keys)
	return slices.Compact(keys), nil
}

// Ping checks connectivity.
func (s *KVStore) Ping(ctx context.Context) error {
	return Healthcheck(s.client)(ctx)
}
