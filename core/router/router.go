package router

import (
	"net/http"

	"github.com/sonr-io/motr-gateway/core/handler"
)

// Router registers generic handlers on net/http patterns.
//
// Patterns use the net/http ServeMux syntax without a method prefix:
// "/api/chains/{id}", "/api/identity/{path...}", "/static/". Methods are
// dispatched by the router so that a path registered for one method answers
// other methods with 405 and an Allow header.
type Router[C handler.Context] interface {
	http.Handler
	Routes

	Get(pattern string, h handler.HandlerFunc[C])
	Post(pattern string, h handler.HandlerFunc[C])
	Put(pattern string, h handler.HandlerFunc[C])
	Delete(pattern string, h handler.HandlerFunc[C])
	Patch(pattern string, h handler.HandlerFunc[C])
	Options(pattern string, h handler.HandlerFunc[C])

	// Handle registers h for every method.
	Handle(pattern string, h handler.HandlerFunc[C])
	// Method registers h for the listed methods.
	Method(pattern string, h handler.HandlerFunc[C], methods ...string)

	// Use appends middleware that runs for every request, including unmatched ones.
	Use(middlewares ...handler.Middleware[C])
	// With returns an inline router whose routes get the extra middleware.
	With(middlewares ...handler.Middleware[C]) Router[C]
	// Group runs fn against an inline router.
	Group(fn func(r Router[C])) Router[C]
	// Route runs fn against an inline router whose patterns are prefixed.
	Route(prefix string, fn func(r Router[C])) Router[C]

	// NotFound sets the handler used when no pattern matches.
	NotFound(h handler.HandlerFunc[C])
}

// Routes exposes the registered routes for introspection.
type Routes interface {
	Routes() []Route
}

// Route is a single registered method and pattern. Method is "*" for Handle.
type Route struct {
	Method  string
	Pattern string
}

// New creates a router.
func New[C handler.Context](opts ...Option[C]) Router[C] {
	return newMux(opts...)
}
