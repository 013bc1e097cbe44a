// Package ratelimiter provides per-key token bucket rate limiting on top of
// golang.org/x/time/rate.
//
//	limiter, err := ratelimiter.New(ratelimiter.Config{
//		Capacity:       5,
//		RefillRate:     5,
//		RefillInterval: time.Minute,
//	})
//	res, err := limiter.Allow(ctx, clientIP)
//	if !res.Allowed() {
//		// wait res.RetryAfter()
//	}
//
// Buckets live in memory. Run removes buckets idle for longer than
// Config.StaleAfter and is meant for errgroup.Go.
package ratelimiter
