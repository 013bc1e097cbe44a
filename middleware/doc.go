// Package middleware holds the gateway's cross-cutting HTTP concerns as
// generic handler.Middleware values:
//
//   - RequestID assigns X-Request-ID and exposes it to logs via RequestIDExtractor.
//   - ClientIP resolves the caller address once per request.
//   - Logging writes one access record per request.
//   - RequestMetrics feeds the Prometheus collectors behind /metrics.
//   - CORSWithConfig guards the JSON API.
//   - RateLimit throttles OTP endpoints per client IP.
//   - BodyLimit caps request bodies.
//   - SecurityHeaders sets the browser security policy.
//
// Typical wiring:
//
//	r.Use(
//		middleware.RequestID[*gateway.Context](),
//		middleware.ClientIP[*gateway.Context](),
//		middleware.Logging[*gateway.Context](log),
//		middleware.RequestMetrics[*gateway.Context](metrics),
//	)
//
// Every middleware returns a handler.Response, so headers are applied when the
// response renders and handler errors still reach the router's error handler.
package middleware
