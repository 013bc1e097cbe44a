package otp

import (
	"errors"
	"strconv"
)

var (
	ErrInvalidEmail    = errors.New("valid email is required")
	ErrInvalidPurpose  = errors.New("unknown otp purpose")
	ErrInvalidExpiry   = errors.New("expiresInMinutes must be between 1 and 60")
	ErrMissingCode     = errors.New("otp code is required")
	ErrAlreadyVerified = errors.New("email already verified")
	ErrRateLimited     = errors.New("otp requested too recently")
	ErrNotFound        = errors.New("otp code expired or not found")
	ErrExpired         = errors.New("otp code expired")
	ErrInvalidCode     = errors.New("invalid otp code")
	ErrTooManyAttempts = errors.New("maximum verification attempts exceeded")
	ErrEnqueue         = errors.New("failed to schedule otp delivery")
	ErrStore           = errors.New("otp store failure")
	ErrDelivery        = errors.New("otp delivery failed")
)

// RateLimitError reports how long the caller must wait before another send.
// It matches ErrRateLimited with errors.Is.
type RateLimitError struct {
	RemainingSeconds int
}

func (e *RateLimitError) Error() string {
	return "please wait " + strconv.Itoa(e.RemainingSeconds) + " seconds before requesting another code"
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }
