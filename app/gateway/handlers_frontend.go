package gateway

import (
	"net/http"
	"strings"

	"github.com/sonr-io/motr-gateway/core/handler"
	"github.com/sonr-io/motr-gateway/core/response"
)

// root serves the subdomain bundle, or redirects to the bundle chosen by
// Target after loading (or creating) the visitor's session.
func (a *App) root(ctx *Context) handler.Response {
	r := ctx.Request()
	if app := SubdomainApp(r.Host); app != "" {
		return a.serveBundle(app, "")
	}

	s, issued, err := a.sessions.GetOrCreate(ctx, r)
	if err != nil {
		return response.Error(err)
	}
	return a.withSessionCookie(response.Redirect("/"+Target(r.Host, r.URL.Path, s)+"/"), s, issued)
}

// frontend serves bundle files for "/<bundle>/..." and for every path on a
// bundle subdomain. It is also the router's fallback, so anything else ends
// in a 404 envelope.
func (a *App) frontend(ctx *Context) handler.Response {
	r := ctx.Request()
	p := r.URL.Path
	if (r.Method != http.MethodGet && r.Method != http.MethodHead) || p == "/api" || strings.HasPrefix(p, "/api/") {
		return notFound(p)
	}

	if app := SubdomainApp(r.Host); app != "" {
		rest := strings.TrimPrefix(p, "/")
		if ns, nsRest, ok := PathApp(p); ok && ns == app {
			rest = nsRest
		}
		return a.serveBundle(app, rest)
	}

	app, rest, ok := PathApp(p)
	if !ok {
		return notFound(p)
	}
	if p == "/"+app {
		target := p + "/"
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		return response.Redirect(target)
	}
	return a.serveBundle(app, rest)
}

func (a *App) serveBundle(app, name string) handler.Response {
	b, ok := a.bundles[app]
	if !ok {
		return func(w http.ResponseWriter, r *http.Request) error {
			return notFoundError(r.URL.Path)
		}
	}
	return b.Serve(name)
}

func (a *App) sharedAsset(ctx *Context) handler.Response {
	if a.shared == nil {
		return notFound(ctx.Request().URL.Path)
	}
	return a.shared.Serve(ctx.Param("path"))
}

func notFound(path string) handler.Response {
	return response.Error(notFoundError(path))
}

func notFoundError(path string) error {
	return response.ErrNotFound.WithDetail("path", path)
}
