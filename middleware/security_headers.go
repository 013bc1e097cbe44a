package middleware

import (
	"net/http"

	"github.com/sonr-io/motr-gateway/core/handler"
)

// SecurityHeadersConfig lists the headers added to every response. Empty
// values are not sent.
type SecurityHeadersConfig struct {
	Skip func(ctx handler.Context) bool

	ContentTypeOptions        string
	FrameOptions              string
	StrictTransportSecurity   string
	ContentSecurityPolicy     string
	ReferrerPolicy            string
	PermissionsPolicy         string
	CrossOriginOpenerPolicy   string
	CrossOriginResourcePolicy string

	// Development drops HSTS so local http origins keep working.
	Development bool
}

// GatewaySecurity suits the hosted SPA bundles: they load WebAssembly and
// talk to the gateway and identity APIs on the same origin.
var GatewaySecurity = SecurityHeadersConfig{
	ContentTypeOptions:        "nosniff",
	FrameOptions:              "SAMEORIGIN",
	StrictTransportSecurity:   "max-age=31536000; includeSubDomains",
	ContentSecurityPolicy:     "default-src 'self'; script-src 'self' 'wasm-unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; connect-src 'self' https:; frame-ancestors 'self'",
	ReferrerPolicy:            "strict-origin-when-cross-origin",
	PermissionsPolicy:         "camera=(), microphone=(), geolocation=()",
	CrossOriginOpenerPolicy:   "same-origin-allow-popups",
	CrossOriginResourcePolicy: "same-site",
}

// SecurityHeaders applies GatewaySecurity.
func SecurityHeaders[C handler.Context]() handler.Middleware[C] {
	return SecurityHeadersWithConfig[C](GatewaySecurity)
}

// SecurityHeadersWithConfig sets the configured headers that earlier
// middleware has not set.
func SecurityHeadersWithConfig[C handler.Context](cfg SecurityHeadersConfig) handler.Middleware[C] {
	pairs := [][2]string{
		{"X-Content-Type-Options", cfg.ContentTypeOptions},
		{"X-Frame-Options", cfg.FrameOptions},
		{"Content-Security-Policy", cfg.ContentSecurityPolicy},
		{"Referrer-Policy", cfg.ReferrerPolicy},
		{"Permissions-Policy", cfg.PermissionsPolicy},
		{"Cross-Origin-Opener-Policy", cfg.CrossOriginOpenerPolicy},
		{"Cross-Origin-Resource-Policy", cfg.CrossOriginResourcePolicy},
	}
	if !cfg.Development {
		pairs = append(pairs, [2]string{"Strict-Transport-Security", cfg.StrictTransportSecurity})
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}
			resp := next(ctx)
			return func(w http.ResponseWriter, r *http.Request) error {
				h := w.Header()
				for _, p := range pairs {
					if p[1] != "" && h.Get(p[0]) == "" {
						h.Set(p[0], p[1])
					}
				}
				return resp(w, r)
			}
		}
	}
}
