package response

import (
	"encoding/json"
	"maps"
	"net/http"
	"strconv"
)

// HTTPError is an error with an HTTP status that renders as a flat JSON
// envelope: {"error": Message, ...Details}. Code is a machine-readable label
// used in logs; it is not serialized.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details map[string]any

	cause error
}

// NewHTTPError creates an error with the given status and message.
func NewHTTPError(status int, message string) HTTPError {
	return HTTPError{
		Status:  status,
		Code:    codeFor(status),
		Message: message,
	}
}

// Error implements error.
func (e HTTPError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// StatusCode satisfies the router's status interface.
func (e HTTPError) StatusCode() int {
	return e.Status
}

// Unwrap returns the cause attached with WithError.
func (e HTTPError) Unwrap() error {
	return e.cause
}

// Is matches another HTTPError by status and code so predefined values work with errors.Is.
func (e HTTPError) Is(target error) bool {
	t, ok := target.(HTTPError)
	return ok && t.Status == e.Status && t.Code == e.Code
}

// WithMessage returns a copy with a different message.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

// WithDetails returns a copy with extra envelope fields merged in.
func (e HTTPError) WithDetails(details map[string]any) HTTPError {
	merged := make(map[string]any, len(e.Details)+len(details))
	maps.Copy(merged, e.Details)
	maps.Copy(merged, details)
	e.Details = merged
	return e
}

// WithDetail returns a copy with one extra envelope field.
func (e HTTPError) WithDetail(key string, value any) HTTPError {
	return e.WithDetails(map[string]any{key: value})
}

// WithError returns a copy that wraps err. The cause is logged, and rendered
// only for 5xx errors by a JSONErrorHandler with WithExposeInternal(true).
func (e HTTPError) WithError(err error) HTTPError {
	e.cause = err
	return e
}

// MarshalJSON renders the flat envelope.
func (e HTTPError) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, len(e.Details)+1)
	maps.Copy(body, e.Details)
	body["error"] = e.Message
	return json.Marshal(body)
}

func codeFor(status int) string {
	if base, ok := httpErrorsByStatus[status]; ok {
		return base.Code
	}
	return "http_" + strconv.Itoa(status)
}

var (
	ErrBadRequest = HTTPError{
		Status:  http.StatusBadRequest,
		Code:    "bad_request",
		Message: "Bad Request",
	}

	ErrUnauthorized = HTTPError{
		Status:  http.StatusUnauthorized,
		Code:    "unauthorized",
		Message: "Unauthorized",
	}

	ErrForbidden = HTTPError{
		Status:  http.StatusForbidden,
		Code:    "forbidden",
		Message: "Forbidden",
	}

	ErrNotFound = HTTPError{
		Status:  http.StatusNotFound,
		Code:    "not_found",
		Message: "Not Found",
	}

	ErrMethodNotAllowed = HTTPError{
		Status:  http.StatusMethodNotAllowed,
		Code:    "method_not_allowed",
		Message: "Method Not Allowed",
	}

	ErrRequestEntityTooLarge = HTTPError{
		Status:  http.StatusRequestEntityTooLarge,
		Code:    "request_entity_too_large",
		Message: "Request Entity Too Large",
	}

	ErrUnsupportedMediaType = HTTPError{
		Status:  http.StatusUnsupportedMediaType,
		Code:    "unsupported_media_type",
		Message: "Unsupported Media Type",
	}

	ErrTooManyRequests = HTTPError{
		Status:  http.StatusTooManyRequests,
		Code:    "too_many_requests",
		Message: "Too Many Requests",
	}

	ErrInternalServerError = HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_server_error",
		Message: "Internal Server Error",
	}

	ErrBadGateway = HTTPError{
		Status:  http.StatusBadGateway,
		Code:    "bad_gateway",
		Message: "Bad Gateway",
	}

	ErrServiceUnavailable = HTTPError{
		Status:  http.StatusServiceUnavailable,
		Code:    "service_unavailable",
		Message: "Service Unavailable",
	}

	ErrGatewayTimeout = HTTPError{
		Status:  http.StatusGatewayTimeout,
		Code:    "gateway_timeout",
		Message: "Gateway Timeout",
	}
)

var httpErrorsByStatus = map[int]HTTPError{
	http.StatusBadRequest:            ErrBadRequest,
	http.StatusUnauthorized:          ErrUnauthorized,
	http.StatusForbidden:             ErrForbidden,
	http.StatusNotFound:              ErrNotFound,
	http.StatusMethodNotAllowed:      ErrMethodNotAllowed,
	http.StatusRequestEntityTooLarge: ErrRequestEntityTooLarge,
	http.StatusUnsupportedMediaType:  ErrUnsupportedMediaType,
	http.StatusTooManyRequests:       ErrTooManyRequests,
	http.StatusInternalServerError:   ErrInternalServerError,
	http.StatusBadGateway:            ErrBadGateway,
	http.StatusServiceUnavailable:    ErrServiceUnavailable,
	http.StatusGatewayTimeout:        ErrGatewayTimeout,
}
