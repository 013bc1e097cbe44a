package session

import "errors"

var (
	// ErrNotFound is returned when no record exists for the cookie.
	ErrNotFound = errors.New("session not found")
	// ErrInvalidDefaultApp is returned for a defaultApp outside console, profile, search.
	ErrInvalidDefaultApp = errors.New("invalid default app")
	// ErrMissingUserID is returned when authenticating without a user id.
	ErrMissingUserID = errors.New("user id is required")
	// ErrMissingPage is returned when recording a visit without a page name.
	ErrMissingPage = errors.New("page is required")
	// ErrSaveSession is returned when writing a record fails.
	ErrSaveSession = errors.New("failed to save session")
	// ErrLoadSession is returned when reading a record fails.
	ErrLoadSession = errors.New("failed to load session")
	// ErrDeleteSession is returned when deleting a record fails.
	ErrDeleteSession = errors.New("failed to delete session")
)
