package response

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sonr-io/motr-gateway/core/handler"
	"github.com/sonr-io/motr-gateway/core/logger"
)

// genericInternalMessage replaces raw error text when internals are hidden.
const genericInternalMessage = "An unexpected error occurred"

type statusCode interface {
	StatusCode() int
}

// convertToHTTPError maps any error to an HTTPError. HTTPErrors pass through;
// errors with a StatusCode method take the matching predefined value; the rest
// become 500.
func convertToHTTPError(err error) (HTTPError, bool) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}
	base, ok := httpErrorsByStatus[status]
	if !ok {
		base = NewHTTPError(status, http.StatusText(status))
	}
	return base.WithError(err), false
}

type errorHandlerOptions struct {
	exposeInternal bool
	logger         *slog.Logger
	now            func() time.Time
}

// ErrorHandlerOption configures JSONErrorHandler.
type ErrorHandlerOption func(*errorHandlerOptions)

// WithExposeInternal includes the raw error text in 500 envelopes.
// Enable it outside production only.
func WithExposeInternal(expose bool) ErrorHandlerOption {
	return func(o *errorHandlerOptions) {
		o.exposeInternal = expose
	}
}

// WithErrorLogger logs every 5xx through l.
func WithErrorLogger(l *slog.Logger) ErrorHandlerOption {
	return func(o *errorHandlerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) ErrorHandlerOption {
	return func(o *errorHandlerOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// JSONErrorHandler renders errors as JSON envelopes.
//
// HTTPErrors render as {"error": Message, ...Details}. Any other error becomes
// {"error":"Internal Server Error","message":...,"timestamp":...} (or the
// matching status when the error reports one), where message is the raw error
// text only when WithExposeInternal(true) is set. With that option an explicit
// 5xx HTTPError carrying a cause also gets the cause text as message, unless
// it already has one.
func JSONErrorHandler[C handler.Context](opts ...ErrorHandlerOption) handler.ErrorHandler[C] {
	o := &errorHandlerOptions{
		logger: logger.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	return func(ctx C, err error) {
		w := ctx.ResponseWriter()
		r := ctx.Request()

		httpErr, explicit := convertToHTTPError(err)
		if httpErr.Status >= http.StatusInternalServerError {
			o.logger.ErrorContext(ctx, "request failed",
				logger.Error(err),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.StatusCode(httpErr.Status),
			)
		}

		if ww, ok := w.(interface{ Written() bool }); ok && ww.Written() {
			return
		}

		switch {
		case !explicit && httpErr.Status >= http.StatusInternalServerError:
			msg := genericInternalMessage
			if o.exposeInternal {
				msg = err.Error()
			}
			httpErr = httpErr.WithDetails(map[string]any{
				"message":   msg,
				"timestamp": o.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			})
		case explicit && o.exposeInternal && httpErr.Status >= http.StatusInternalServerError && httpErr.cause != nil:
			if _, ok := httpErr.Details["message"]; !ok {
				httpErr = httpErr.WithDetail("message", httpErr.cause.Error())
			}
		}

		Render(ctx, JSONWithStatus(httpErr, httpErr.Status))
	}
}
