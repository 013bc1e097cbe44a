// Package binder decodes JSON request bodies into Go values.
//
// JSON checks the Content-Type (an absent header is accepted), decodes a
// single JSON value, rejects trailing data and trims surrounding whitespace
// from every string field of the target:
//
//	var req struct {
//		Email string `json:"email"`
//	}
//	if err := binder.JSON(r, &req); err != nil {
//		return response.Error(binder.HTTPError(err))
//	}
//
// Size limits are enforced by wrapping the body with http.MaxBytesReader,
// usually through middleware.BodyLimit; an exceeded limit is reported as
// ErrBodyTooLarge.
package binder
