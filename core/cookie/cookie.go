package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

const (
	// MaxCookieSize is the maximum size for a cookie (4KB).
	MaxCookieSize = 4096
	// minSecretLength is the minimum accepted HMAC key length.
	minSecretLength = 32
)

// Manager reads and writes cookies with shared defaults. With secrets it
// signs values with HMAC-SHA256 and accepts any configured key on read, so
// keys can be rotated by prepending a new one.
type Manager struct {
	secrets  []string
	defaults Options
	maxSize  int
}

// ManagerOption configures the Manager itself (not individual cookies).
type ManagerOption func(*Manager)

// WithMaxSize sets the maximum cookie size.
func WithMaxSize(size int) ManagerOption {
	return func(m *Manager) {
		if size > 0 {
			m.maxSize = size
		}
	}
}

// WithSecrets enables signing. The first secret signs; all of them verify.
func WithSecrets(secrets ...string) ManagerOption {
	return func(m *Manager) {
		m.secrets = append(m.secrets, secrets...)
	}
}

// New creates a manager with cookie defaults and manager options.
// Secrets are optional; when present each must be at least 32 characters.
func New(cookieOpts []Option, managerOpts ...ManagerOption) (*Manager, error) {
	m := &Manager{
		defaults: Options{
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}.with(cookieOpts),
		maxSize: MaxCookieSize,
	}
	for _, opt := range managerOpts {
		opt(m)
	}

	m.secrets = slices.DeleteFunc(m.secrets, func(s string) bool { return s == "" })
	for i, s := range m.secrets {
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d",
				ErrSecretTooShort, i, len(s), minSecretLength)
		}
	}
	return m, nil
}

// Signed reports whether Write and Read sign values.
func (m *Manager) Signed() bool {
	return len(m.secrets) > 0
}

// Defaults returns the cookie attributes applied to every Set.
func (m *Manager) Defaults() Options {
	return m.defaults
}

// Cookie builds the cookie Set would write, without writing it.
func (m *Manager) Cookie(name, value string, opts ...Option) (*http.Cookie, error) {
	c := m.defaults.with(opts).cookie(name, value)
	if size := len(c.String()); size > m.maxSize {
		return nil, ErrCookieTooLarge{Name: name, Size: size, Max: m.maxSize}
	}
	return c, nil
}

// Set writes a plain cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) error {
	c, err := m.Cookie(name, value, opts...)
	if err != nil {
		return err
	}
	http.SetCookie(w, c)
	return nil
}

// Get retrieves a plain cookie value.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Delete expires a cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.defaults.expired(name))
}

// SetSigned writes an HMAC-signed cookie.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) error {
	if !m.Signed() {
		return ErrNoSecret
	}
	return m.Set(w, name, m.sign(value), opts...)
}

// GetSigned retrieves and verifies a signed cookie.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	if !m.Signed() {
		return "", ErrNoSecret
	}
	signed, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.verify(signed)
}

// Write signs the value when secrets are configured and writes it plain otherwise.
func (m *Manager) Write(w http.ResponseWriter, name, value string, opts ...Option) error {
	if m.Signed() {
		return m.SetSigned(w, name, value, opts...)
	}
	return m.Set(w, name, value, opts...)
}

// Read is the counterpart of Write.
func (m *Manager) Read(r *http.Request, name string) (string, error) {
	if m.Signed() {
		return m.GetSigned(r, name)
	}
	return m.Get(r, name)
}

// sign creates an HMAC signature for the value.
func (m *Manager) sign(value string) string {
	mac := hmac.New(sha256.New, []byte(m.secrets[0]))
	mac.Write([]byte(value))
	signature := base64.URLEncoding.EncodeToString(mac.Sum(nil))
	return base64.URLEncoding.EncodeToString([]byte(value)) + "|" + signature
}

// verify checks the HMAC signature against every configured secret.
func (m *Manager) verify(signed string) (string, error) {
	encodedValue, signature, ok := strings.Cut(signed, "|")
	if !ok {
		return "", ErrInvalidFormat
	}

	value, err := base64.URLEncoding.DecodeString(encodedValue)
	if err != nil {
		return "", ErrInvalidFormat
	}

	valid := slices.ContainsFunc(m.secrets, func(secret string) bool {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(value)
		expected := base64.URLEncoding.EncodeToString(mac.Sum(nil))
		return subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) == 1
	})
	if !valid {
		return "", ErrInvalidSignature
	}
	return string(value), nil
}
