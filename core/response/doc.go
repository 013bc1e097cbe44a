// Package response builds handler.Response values: JSON bodies, redirects,
// status-only replies and the JSON error envelope used across the gateway.
//
// Handlers return a Response instead of writing to the ResponseWriter:
//
//	func getChain(ctx handler.Context) handler.Response {
//		chain, err := registry.Chain(ctx, ctx.Param("id"))
//		if err != nil {
//			return response.Error(err)
//		}
//		return response.JSON(chain)
//	}
//
// Errors flow to the router's error handler. JSONErrorHandler renders an
// HTTPError as {"error": Message, ...Details} and any other error as a 500
// envelope with a timestamp.
package response
