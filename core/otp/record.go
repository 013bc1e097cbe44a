package otp

import (
	"regexp"
	"strings"
	"time"
)

// Purposes accepted by RequestCode.
const (
	PurposeRegistration  = "registration"
	PurposeLogin         = "login"
	PurposePasswordReset = "password-reset"
)

// KeyPrefix namespaces OTP records in the shared KV store.
const KeyPrefix = "otp:"

// Record is the stored challenge for one address. Timestamps are Unix
// milliseconds.
type Record struct {
	Code        string `json:"code"`
	Purpose     string `json:"purpose,omitempty"`
	ExpiresAt   int64  `json:"expiresAt"`
	LastSentAt  int64  `json:"lastSentAt"`
	CreatedAt   int64  `json:"createdAt"`
	Validated   bool   `json:"validated"`
	ValidatedAt int64  `json:"validatedAt,omitempty"`
	Attempts    int    `json:"attempts,omitempty"`
}

// Expired reports whether the code is past its expiry at now.
func (r Record) Expired(now time.Time) bool {
	return now.UnixMilli() > r.ExpiresAt
}

// resendWait returns how long until another send is allowed, or zero.
func (r Record) resendWait(now time.Time, interval time.Duration) time.Duration {
	elapsed := time.Duration(now.UnixMilli()-r.LastSentAt) * time.Millisecond
	if elapsed >= interval {
		return 0
	}
	return interval - elapsed
}

// ceilSeconds rounds d up to whole seconds.
func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims and lower-cases addr and checks its shape.
func NormalizeEmail(addr string) (string, error) {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if !emailPattern.MatchString(addr) {
		return "", ErrInvalidEmail
	}
	return addr, nil
}

func validPurpose(p string) bool {
	switch p {
	case PurposeRegistration, PurposeLogin, PurposePasswordReset:
		return true
	}
	return false
}
