package kv

import "errors"

var (
	ErrNotFound = errors.New("kv: key not found")
	ErrEncode   = errors.New("kv: failed to encode value")
	ErrDecode   = errors.New("kv: failed to decode value")
	ErrEmptyKey = errors.New("kv: empty key")
)
