package middleware

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/sonr-io/motr-gateway/core/handler"
)

// CORSConfig configures cross-origin access to the JSON API.
type CORSConfig struct {
	Skip func(ctx handler.Context) bool
	// AllowOrigins lists exact origins. Empty or containing "*" allows any.
	AllowOrigins []string
	// AllowOriginFunc takes precedence over AllowOrigins.
	AllowOriginFunc func(origin string) bool
	AllowMethods    []string
	AllowHeaders    []string
	ExposeHeaders   []string
	// AllowCredentials is ignored for wildcard origins.
	AllowCredentials bool
	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int
}

// CORS allows any origin without credentials.
func CORS[C handler.Context]() handler.Middleware[C] {
	return CORSWithConfig[C](CORSConfig{})
}

// CORSWithConfig answers preflight requests with 204 (403 for disallowed
// origins or methods) and decorates other responses with the allow headers.
func CORSWithConfig[C handler.Context](cfg CORSConfig) handler.Middleware[C] {
	if len(cfg.AllowMethods) == 0 {
		cfg.AllowMethods = []string{
			http.MethodGet, http.MethodHead, http.MethodPost,
			http.MethodPut, http.MethodPatch, http.MethodDelete,
		}
	}
	if len(cfg.AllowHeaders) == 0 {
		cfg.AllowHeaders = []string{"Accept", "Authorization", "Content-Type", "Origin", RequestIDHeader}
	}
	if len(cfg.ExposeHeaders) == 0 {
		cfg.ExposeHeaders = []string{RequestIDHeader}
	}

	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")
	expose := strings.Join(cfg.ExposeHeaders, ", ")
	wildcard := cfg.AllowOriginFunc == nil &&
		(len(cfg.AllowOrigins) == 0 || slices.Contains(cfg.AllowOrigins, "*"))

	allowed := func(origin string) (string, bool) {
		switch {
		case cfg.AllowOriginFunc != nil:
			return origin, origin != "" && cfg.AllowOriginFunc(origin)
		case wildcard:
			return "*", true
		default:
			return origin, slices.Contains(cfg.AllowOrigins, origin)
		}
	}

	setCommon := func(h http.Header, origin string) {
		h.Set("Access-Control-Allow-Origin", origin)
		if cfg.AllowCredentials && origin != "*" {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		h.Add("Vary", "Origin")
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			req := ctx.Request()
			origin, ok := allowed(req.Header.Get("Origin"))
			reqMethod := req.Header.Get("Access-Control-Request-Method")

			if req.Method == http.MethodOptions && reqMethod != "" {
				return func(w http.ResponseWriter, _ *http.Request) error {
					if !ok || !slices.Contains(cfg.AllowMethods, reqMethod) {
						w.WriteHeader(http.StatusForbidden)
						return nil
					}
					h := w.Header()
					setCommon(h, origin)
					h.Set("Access-Control-Allow-Methods", methods)
					h.Set("Access-Control-Allow-Headers", headers)
					if cfg.MaxAge > 0 {
						h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
					}
					h.Add("Vary", "Access-Control-Request-Method")
					h.Add("Vary", "Access-Control-Request-Headers")
					w.WriteHeader(http.StatusNoContent)
					return nil
				}
			}

			resp := next(ctx)
			if !ok {
				return resp
			}
			return func(w http.ResponseWriter, r *http.Request) error {
				setCommon(w.Header(), origin)
				w.Header().Set("Access-Control-Expose-Headers", expose)
				return resp(w, r)
			}
		}
	}
}

// AllowOriginSubdomain matches domain and any of its subdomains, with or
// without a port, e.g. "sonr.id" accepts https://console.sonr.id:8443.
func AllowOriginSubdomain(domain string) func(origin string) bool {
	domain = strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(domain, "*."), "."))
	return func(origin string) bool {
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return false
		}
		host := strings.ToLower(u.Hostname())
		return host == domain || strings.HasSuffix(host, "."+domain)
	}
}
