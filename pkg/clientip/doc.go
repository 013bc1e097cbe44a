// Package clientip extracts the client address from a request that may have
// passed through Cloudflare, DigitalOcean or a generic reverse proxy.
//
// Headers are checked in order: CF-Connecting-IP, DO-Connecting-IP,
// X-Forwarded-For (first entry), X-Real-IP. RemoteAddr is the fallback.
// Addresses are normalized (IPv4-mapped IPv6 is unmapped) and the
// unspecified addresses 0.0.0.0 and :: are rejected.
package clientip
