package response

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sonr-io/motr-gateway/core/handler"
)

// WithHeaders sets headers before rendering response.
func WithHeaders(response handler.Response, headers map[string]string) handler.Response {
	if response == nil || len(headers) == 0 {
		return response
	}
	return func(w http.ResponseWriter, r *http.Request) error {
		for k, v := range headers {
			w.Header().Set(k, v)
		}
		return response(w, r)
	}
}

// WithCookie sets cookie before rendering response.
func WithCookie(response handler.Response, cookie *http.Cookie) handler.Response {
	if response == nil || cookie == nil {
		return response
	}
	return func(w http.ResponseWriter, r *http.Request) error {
		http.SetCookie(w, cookie)
		return response(w, r)
	}
}

// WithBefore runs fn against the writer before rendering response. It is the
// hook used to attach cookies produced by managers that write headers directly.
func WithBefore(response handler.Response, fn func(w http.ResponseWriter, r *http.Request) error) handler.Response {
	if response == nil || fn == nil {
		return response
	}
	return func(w http.ResponseWriter, r *http.Request) error {
		if err := fn(w, r); err != nil {
			return err
		}
		return response(w, r)
	}
}

// WithCache sets Cache-Control. maxAge <= 0 disables caching.
func WithCache(response handler.Response, maxAge time.Duration) handler.Response {
	if response == nil {
		return nil
	}
	return func(w http.ResponseWriter, r *http.Request) error {
		if maxAge > 0 {
			w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds())))
		} else {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
		}
		return response(w, r)
	}
}

// WithImmutableCache marks response as cacheable for a year and never revalidated.
func WithImmutableCache(response handler.Response) handler.Response {
	return WithHeaders(response, map[string]string{
		"Cache-Control": "public, max-age=31536000, immutable",
	})
}
