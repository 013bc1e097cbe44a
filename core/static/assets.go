package static

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/sonr-io/motr-gateway/core/handler"
)

// ImmutableCacheControl is sent with every asset.
const ImmutableCacheControl = "public, max-age=31536000, immutable"

// Assets serves content-hashed files from fsys with an immutable cache
// policy. There is no index fallback: unknown paths are 404.
type Assets struct {
	fsys fs.FS
}

// NewAssets wraps fsys.
func NewAssets(fsys fs.FS) *Assets {
	return &Assets{fsys: fsys}
}

// Serve renders the file at name, relative to the asset root.
func (a *Assets) Serve(name string) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		clean, ok := cleanName(name)
		if !ok {
			return notFound(r)
		}
		w.Header().Set("Cache-Control", ImmutableCacheControl)
		err := serveFile(w, r, a.fsys, clean)
		if errors.Is(err, ErrNotFound) {
			w.Header().Del("Cache-Control")
			return notFound(r)
		}
		return err
	}
}

// AssetsHandler serves a on a route whose trailing wildcard is param.
func AssetsHandler[C handler.Context](a *Assets, param string) handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		return a.Serve(ctx.Param(param))
	}
}
