package router

import (
	"context"
	"net/http"
	"time"
)

// Context is the default handler.Context implementation.
type Context struct {
	w http.ResponseWriter
	r *http.Request
}

// NewContext builds a Context. Exposed for tests and custom factories that embed it.
func NewContext(w http.ResponseWriter, r *http.Request) *Context {
	return &Context{w: w, r: r}
}

func (c *Context) Deadline() (time.Time, bool) { return c.r.Context().Deadline() }
func (c *Context) Done() <-chan struct{}       { return c.r.Context().Done() }
func (c *Context) Err() error                  { return c.r.Context().Err() }
func (c *Context) Value(key any) any           { return c.r.Context().Value(key) }

// Request returns the current request. SetValue replaces it with a derived copy.
func (c *Context) Request() *http.Request { return c.r }

// ResponseWriter returns the wrapped writer.
func (c *Context) ResponseWriter() http.ResponseWriter { return c.w }

// Param returns a wildcard captured by the matched pattern.
func (c *Context) Param(key string) string { return c.r.PathValue(key) }

// SetValue stores val in the request context.
func (c *Context) SetValue(key, val any) {
	c.r = c.r.WithContext(context.WithValue(c.r.Context(), key, val))
}
