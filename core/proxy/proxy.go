package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/sonr-io/motr-gateway/core/handler"
	"github.com/sonr-io/motr-gateway/core/logger"
	"github.com/sonr-io/motr-gateway/core/response"
)

// UpstreamPrefix is prepended to the forwarded path.
const UpstreamPrefix = "/identity/"

// Proxy is a reverse proxy to the identity service.
type Proxy struct {
	target    *url.URL
	timeout   time.Duration
	transport http.RoundTripper
	logger    *slog.Logger
	rp        *httputil.ReverseProxy
}

// Option configures a Proxy.
type Option func(*Proxy)

// WithTimeout bounds each round trip; d <= 0 disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(p *Proxy) {
		p.timeout = max(0, d)
	}
}

// WithTransport replaces http.DefaultTransport.
func WithTransport(rt http.RoundTripper) Option {
	return func(p *Proxy) {
		if rt != nil {
			p.transport = rt
		}
	}
}

// WithLogger sets the logger used for upstream failures.
func WithLogger(l *slog.Logger) Option {
	return func(p *Proxy) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a proxy to the absolute http(s) URL rawURL.
func New(rawURL string, opts ...Option) (*Proxy, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	p := &Proxy{
		target:    target,
		transport: http.DefaultTransport,
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(logger.Component("identity-proxy"))

	p.rp = &httputil.ReverseProxy{
		Rewrite:      p.rewrite,
		Transport:    p.transport,
		ErrorHandler: p.fail,
		// Streamed identity responses reach the client without buffering.
		FlushInterval: -1,
	}
	return p, nil
}

// Target returns the upstream base URL.
func (p *Proxy) Target() string { return p.target.String() }

// Forward proxies r to /identity/<rest> on the upstream. rest is in escaped
// form so encoded separators such as %2F reach the upstream unchanged.
func (p *Proxy) Forward(rest string) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		ctx := context.WithValue(r.Context(), restKey{}, strings.TrimPrefix(rest, "/"))
		if p.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.timeout)
			defer cancel()
		}
		p.rp.ServeHTTP(w, r.WithContext(ctx))
		return nil
	}
}

// Handler proxies every request below prefix, e.g. "/api/identity/" for a
// "/api/identity/{path...}" route. An empty remainder is rejected with
// ErrMissingID.
func Handler[C handler.Context](p *Proxy, prefix string) handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		rest, ok := strings.CutPrefix(ctx.Request().URL.EscapedPath(), prefix)
		if !ok || rest == "" {
			return response.Error(ErrMissingID)
		}
		return p.Forward(rest)
	}
}

type restKey struct{}

// Rewrite mode strips these from the outbound request before rewrite runs.
var forwardedHeaders = []string{"Forwarded", "X-Forwarded-For", "X-Forwarded-Host", "X-Forwarded-Proto"}

func (p *Proxy) rewrite(pr *httputil.ProxyRequest) {
	rest, _ := pr.In.Context().Value(restKey{}).(string)

	raw := strings.TrimSuffix(p.target.EscapedPath(), "/") + UpstreamPrefix + rest
	path, err := url.PathUnescape(raw)
	if err != nil {
		path = raw
	}

	out := pr.Out
	out.URL.Scheme = p.target.Scheme
	out.URL.Host = p.target.Host
	out.URL.Path = path
	out.URL.RawPath = raw
	out.URL.RawQuery = pr.In.URL.RawQuery
	out.Host = p.target.Host

	copied := false
	for _, h := range forwardedHeaders {
		if v, ok := pr.In.Header[h]; ok {
			out.Header[h] = slices.Clone(v)
			copied = true
		}
	}
	if !copied {
		pr.SetXForwarded()
	}
}

func (p *Proxy) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := ErrUnavailable.Status
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		// Client went away; nobody reads the response.
		p.logger.DebugContext(r.Context(), "identity request cancelled by client", logger.Path(r.URL.Path))
		return
	}
	p.logger.ErrorContext(r.Context(), "identity upstream failed",
		logger.Method(r.Method),
		logger.Path(r.URL.Path),
		logger.Error(errors.Join(ErrUpstream, err)))

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrUnavailable)
}
