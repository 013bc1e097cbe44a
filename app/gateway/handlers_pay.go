package gateway

import (
	"net"
	"net/http"
	"strings"

	"github.com/sonr-io/motr-gateway/core/handler"
	"github.com/sonr-io/motr-gateway/core/response"
)

// ProductionPaymentOrigin is listed as a supported origin unless the gateway
// is reached on a loopback host.
const ProductionPaymentOrigin = "https://sonr.id"

// PaymentManifest is the W3C payment method manifest served at /pay.
type PaymentManifest struct {
	DefaultApplications []string `json:"default_applications"`
	SupportedOrigins    []string `json:"supported_origins"`
}

func (a *App) paymentManifest(ctx *Context) handler.Response {
	origin := requestOrigin(ctx.Request())
	manifest := PaymentManifest{
		DefaultApplications: []string{origin + "/site.webmanifest"},
		SupportedOrigins:    []string{origin},
	}
	if !isLoopbackHost(ctx.Request().Host) {
		manifest.SupportedOrigins = append(manifest.SupportedOrigins, ProductionPaymentOrigin)
	}

	return response.WithHeaders(response.JSON(manifest), map[string]string{
		"Link":                        "<" + origin + `/pay/payment-manifest.json>; rel="payment-method-manifest"`,
		"Access-Control-Allow-Origin": "*",
	})
}

// requestOrigin rebuilds scheme://host, taking the scheme from TLS or the
// first X-Forwarded-Proto value.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		first, _, _ := strings.Cut(proto, ",")
		if p := strings.ToLower(strings.TrimSpace(first)); p == "http" || p == "https" {
			scheme = p
		}
	}
	return scheme + "://" + r.Host
}

func isLoopbackHost(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.Contains(host, "localhost") || strings.Contains(host, "127.0.0.1")
}
