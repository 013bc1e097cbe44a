package health

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sonr-io/motr-gateway/core/handler"
	"github.com/sonr-io/motr-gateway/core/logger"
	"github.com/sonr-io/motr-gateway/core/response"
)

// DefaultCheckTimeout bounds a readiness probe.
const DefaultCheckTimeout = 5 * time.Second

// Check is one named dependency probe.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// ReadinessStatus is the /health/ready body. Errors maps failing check names
// to their messages.
type ReadinessStatus struct {
	Status string            `json:"status"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Readiness runs checks concurrently. It answers 200 {"status":"ready"} or
// 503 {"status":"unavailable","errors":{...}}.
func Readiness[C handler.Context](log *slog.Logger, checks ...Check) handler.HandlerFunc[C] {
	return ReadinessWithTimeout[C](log, DefaultCheckTimeout, checks...)
}

// ReadinessWithTimeout is Readiness with a custom probe timeout.
func ReadinessWithTimeout[C handler.Context](log *slog.Logger, timeout time.Duration, checks ...Check) handler.HandlerFunc[C] {
	if log == nil {
		log = logger.Discard()
	}
	log = log.With(logger.Component("health"))

	return func(ctx C) handler.Response {
		failed := Run(ctx, timeout, checks...)
		if len(failed) == 0 {
			return response.JSON(ReadinessStatus{Status: "ready"})
		}

		msgs := make(map[string]string, len(failed))
		for name, err := range failed {
			log.ErrorContext(ctx, "readiness check failed", slog.String("check", name), logger.Error(err))
			msgs[name] = err.Error()
		}
		return response.JSONWithStatus(ReadinessStatus{Status: "unavailable", Errors: msgs}, http.StatusServiceUnavailable)
	}
}

// Run executes checks concurrently and returns the failures by name.
func Run(ctx context.Context, timeout time.Duration, checks ...Check) map[string]error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var (
		mu     sync.Mutex
		failed = make(map[string]error)
		g      errgroup.Group
	)
	for _, c := range checks {
		g.Go(func() error {
			if err := c.Fn(ctx); err != nil {
				mu.Lock()
				failed[c.Name] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return failed
}
