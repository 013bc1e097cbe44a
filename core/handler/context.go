package handler

import (
	"context"
	"net/http"
)

// Context is the per-request value handed to every HandlerFunc.
// Param returns path wildcards captured by the router (see http.Request.PathValue).
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	Param(key string) string
	SetValue(key, val any)
}
