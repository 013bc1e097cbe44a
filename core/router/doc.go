// Package router is a generic HTTP router on top of net/http's ServeMux.
//
// Handlers receive a typed context built per request by the context factory
// and return a handler.Response. Errors from handlers and recovered panics go
// to a single ErrorHandler.
//
//	r := router.New[*router.Context]()
//	r.Use(logging)
//	r.Get("/health", health)
//	r.Route("/api", func(api router.Router[*router.Context]) {
//		api.Get("/chains/{id}", getChain)
//		api.Handle("/identity/{path...}", proxy)
//	})
//
// Root middleware runs for every request, unmatched ones included. Middleware
// attached with With, Group or Route wraps the routes registered through that
// inline router and the 405 reply for their patterns.
package router
