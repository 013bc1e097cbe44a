// Package kv defines the key-value store used for sessions, OTP records and
// the chain registry, plus an in-memory implementation.
//
// The Redis implementation lives in integration/database/redis.
package kv
