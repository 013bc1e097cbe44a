// Package proxy forwards identity requests to the identity service.
//
// A request to /api/identity/<rest> is sent to <IDENTITY_URL>/identity/<rest>
// with its method, query, headers and body. The path keeps its escaping and
// client-supplied Forwarded and X-Forwarded-* headers pass through; they are
// only generated when the client sent none. The upstream response is copied
// back as is. A request for /api/identity/ itself gets
//
//	400 {"error":"Identity ID required"}
//
// When the upstream cannot be reached the client receives
//
//	503 {"error":"Identity Service Error","message":"Failed to communicate with identity service"}
package proxy
