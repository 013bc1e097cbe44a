package gateway

import "errors"

var (
	ErrNilOption      = errors.New("gateway: option value cannot be nil")
	ErrStoreSetup     = errors.New("gateway: failed to set up kv store")
	ErrSenderSetup    = errors.New("gateway: failed to set up email sender")
	ErrQueueSetup     = errors.New("gateway: failed to set up task queue")
	ErrCookieSetup    = errors.New("gateway: failed to set up cookie manager")
	ErrProxySetup     = errors.New("gateway: failed to set up identity proxy")
	ErrLimiterSetup   = errors.New("gateway: failed to set up rate limiter")
	ErrServerSetup    = errors.New("gateway: failed to set up http server")
	ErrRegistrySeed   = errors.New("gateway: failed to seed chain registry")
	ErrChainNotFound  = errors.New("chain not found")
	ErrMissingChainID = errors.New("chain id required")
)
