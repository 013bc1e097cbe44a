// Package redis connects to Redis with retries and provides a kv.Store
// backed by it.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	store := redis.NewKVStore(client, cfg.ScanBatchSize)
//
// Connect accepts redis:// and rediss:// URLs. It pings the server up to
// RetryAttempts times, waiting RetryInterval multiplied by the attempt number
// between tries, and gives up when ConnectTimeout elapses.
//
// Errors are package sentinels usable with errors.Is:
//
//   - ErrEmptyURL: no REDIS_URL configured
//   - ErrInvalidURL: malformed URL
//   - ErrNotReady: the server never answered PING
//   - ErrHealthcheckFailed: a readiness ping failed
package redis
