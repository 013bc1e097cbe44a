package cookie

import (
	"errors"
	"fmt"
)

var (
	ErrNoSecret         = errors.New("cookie: manager has no signing secret")
	ErrSecretTooShort   = errors.New("cookie: secret must be at least 32 characters")
	ErrInvalidSignature = errors.New("cookie: signature mismatch")
	ErrCookieNotFound   = errors.New("cookie: not present in request")
	ErrInvalidFormat    = errors.New("cookie: malformed signed value")
)

// ErrCookieTooLarge is returned when the serialized cookie exceeds the
// manager's size limit.
type ErrCookieTooLarge struct {
	Name string
	Size int
	Max  int
}

func (e ErrCookieTooLarge) Error() string {
	return fmt.Sprintf("cookie: %q is %d bytes, limit %d", e.Name, e.Size, e.Max)
}
