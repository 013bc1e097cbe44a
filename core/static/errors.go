package static

import "errors"

var (
	ErrNotDirectory = errors.New("static: root is not a directory")
	ErrNoIndex      = errors.New("static: bundle has no index document")
	ErrNotFound     = errors.New("static: file not found")
)
