package static

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/sonr-io/motr-gateway/core/handler"
	"github.com/sonr-io/motr-gateway/core/response"
)

// DefaultIndex is the entry document of every bundle.
const DefaultIndex = "index.html"

// Bundle is one single-page frontend.
type Bundle struct {
	name  string
	fsys  fs.FS
	index string
}

// BundleOption configures a Bundle.
type BundleOption func(*Bundle)

// WithIndex overrides the entry document name.
func WithIndex(name string) BundleOption {
	return func(b *Bundle) {
		if name != "" {
			b.index = name
		}
	}
}

// NewBundle wraps fsys. It fails when the entry document is missing.
func NewBundle(name string, fsys fs.FS, opts ...BundleOption) (*Bundle, error) {
	b := &Bundle{name: name, fsys: fsys, index: DefaultIndex}
	for _, opt := range opts {
		opt(b)
	}
	if _, err := fs.Stat(fsys, b.index); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNoIndex, name, err)
	}
	return b, nil
}

// OpenBundle opens the bundle stored in dir.
func OpenBundle(name, dir string, opts ...BundleOption) (*Bundle, error) {
	fsys, err := DirFS(dir)
	if err != nil {
		return nil, err
	}
	return NewBundle(name, fsys, opts...)
}

// DirFS returns os.DirFS(dir) after checking that dir is a directory.
func DirFS(dir string) (fs.FS, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("static: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}
	return os.DirFS(dir), nil
}

// Name returns the bundle name.
func (b *Bundle) Name() string { return b.name }

// Serve renders the file at name, relative to the bundle root. Missing files
// and directories without an index render the entry document.
func (b *Bundle) Serve(name string) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if clean, ok := cleanName(name); ok {
			err := serveFile(w, r, b.fsys, clean)
			if err == nil || !errors.Is(err, ErrNotFound) {
				return err
			}
		}
		// The entry document changes on every deploy.
		w.Header().Set("Cache-Control", "no-cache")
		err := serveFile(w, r, b.fsys, b.index)
		if errors.Is(err, ErrNotFound) {
			w.Header().Del("Cache-Control")
			return notFound(r)
		}
		return err
	}
}

// Index renders the entry document.
func (b *Bundle) Index() handler.Response {
	return b.Serve("")
}

// Handler serves the bundle on a route whose trailing wildcard is param,
// e.g. "/console/{path...}".
func Handler[C handler.Context](b *Bundle, param string) handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		return b.Serve(ctx.Param(param))
	}
}

// cleanName maps a URL path to an fs.FS name. It rejects paths escaping the root.
func cleanName(name string) (string, bool) {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if name == "" {
		return "", false
	}
	return name, fs.ValidPath(name)
}

// serveFile writes name from fsys. Directories resolve to their index.html;
// a directory without one is ErrNotFound, so listings are never rendered.
func serveFile(w http.ResponseWriter, r *http.Request, fsys fs.FS, name string) error {
	f, err := fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return ErrNotFound
		}
		return fmt.Errorf("static: open %s: %w", name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("static: stat %s: %w", name, err)
	}
	if info.IsDir() {
		return serveFile(w, r, fsys, path.Join(name, DefaultIndex))
	}

	content, ok := f.(io.ReadSeeker)
	if !ok {
		raw, err := io.ReadAll(f)
		if err != nil {
			return fmt.Errorf("static: read %s: %w", name, err)
		}
		content = bytes.NewReader(raw)
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), content)
	return nil
}

// notFound is the JSON 404 used when nothing can be served.
func notFound(r *http.Request) error {
	return response.ErrNotFound.WithDetail("path", r.URL.Path)
}
