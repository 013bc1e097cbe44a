package proxy

import (
	"errors"
	"net/http"

	"github.com/sonr-io/motr-gateway/core/response"
)

var (
	ErrInvalidURL = errors.New("proxy: invalid upstream url")
	ErrUpstream   = errors.New("proxy: upstream round trip failed")
)

// ErrUnavailable is rendered when the upstream round trip fails.
var ErrUnavailable = response.NewHTTPError(http.StatusServiceUnavailable, "Identity Service Error").
	WithDetail("message", "Failed to communicate with identity service")

// ErrMissingID is rendered for a request with nothing after the proxy prefix.
var ErrMissingID = response.NewHTTPError(http.StatusBadRequest, "Identity ID required")
