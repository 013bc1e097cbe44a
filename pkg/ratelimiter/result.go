package ratelimiter

import "time"

// Result is the outcome of one Allow call.
type Result struct {
	Limit      int
	Remaining  int
	ResetAt    time.Time
	retryAfter time.Duration
	allowed    bool
}

// Allowed reports whether the request may proceed.
func (r *Result) Allowed() bool {
	return r.allowed
}

// RetryAfter is how long a denied caller should wait. Zero when allowed.
func (r *Result) RetryAfter() time.Duration {
	return r.retryAfter
}
