package redis

import "errors"

var (
	ErrEmptyURL          = errors.New("redis: REDIS_URL is empty")
	ErrInvalidURL        = errors.New("redis: invalid connection url")
	ErrNotReady          = errors.New("redis: server did not answer ping before the connect timeout")
	ErrHealthcheckFailed = errors.New("redis: ping failed")
)
