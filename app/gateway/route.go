package gateway

import (
	"net"
	"strings"

	"github.com/sonr-io/motr-gateway/core/session"
)

// AppAuth is the bundle served to visitors without an authenticated session.
const AppAuth = "auth"

// bundleNames lists every static bundle the gateway serves.
var bundleNames = []string{AppAuth, session.AppConsole, session.AppProfile, session.AppSearch}

// Target picks the bundle a request belongs to: a bundle subdomain wins, then
// a bundle path prefix, then the preference of an authenticated session
// (console when unset). Everyone else lands on auth.
func Target(host, path string, s session.Session) string {
	if app := SubdomainApp(host); app != "" {
		return app
	}
	if app, _, ok := PathApp(path); ok && app != AppAuth {
		return app
	}
	if s.IsAuthenticated() {
		if app := s.DefaultApp(); app != "" {
			return app
		}
		return session.AppConsole
	}
	return AppAuth
}

// SubdomainApp returns the bundle named by the first label of host, or "".
// Only console, profile and search have subdomains.
func SubdomainApp(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	label, _, _ := strings.Cut(strings.ToLower(host), ".")
	if session.IsKnownApp(label) {
		return label
	}
	return ""
}

// PathApp matches the first path segment against the bundle names. rest is
// the remainder without the namespace, "" for "/console" and "/console/".
func PathApp(path string) (app, rest string, ok bool) {
	seg, rest, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	for _, name := range bundleNames {
		if seg == name {
			return name, rest, true
		}
	}
	return "", "", false
}
