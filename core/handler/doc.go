// Package handler defines the generic handler, middleware and context types
// shared by the router, response helpers and middleware packages.
//
// A handler receives a request-scoped context and returns a Response closure:
//
//	func health(ctx *gateway.Context) handler.Response {
//		return response.JSON(map[string]string{"status": "ok"})
//	}
//
// Errors returned by a Response flow to the router's ErrorHandler, which owns
// the JSON error envelope.
package handler
