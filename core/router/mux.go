package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"sync"

	"github.com/sonr-io/motr-gateway/core/handler"
	"github.com/sonr-io/motr-gateway/core/logger"
)

const anyMethod = "*"

var knownMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
	http.MethodConnect: true,
	http.MethodTrace:   true,
}

// routeTable is shared between a root mux and its inline routers.
type routeTable[C handler.Context] struct {
	mu     sync.RWMutex
	serve  *http.ServeMux
	routes map[string]*route[C]
	order  []Route
}

// route holds the per-method handlers registered on one pattern.
type route[C handler.Context] struct {
	pattern  string
	handlers map[string]handler.HandlerFunc[C]
	// middlewares of the inline router that first registered the pattern,
	// applied to the 405 response so CORS preflight still works.
	middlewares []handler.Middleware[C]
}

func (rt *route[C]) lookup(method string) (handler.HandlerFunc[C], bool) {
	if h, ok := rt.handlers[method]; ok {
		return h, true
	}
	if method == http.MethodHead {
		if h, ok := rt.handlers[http.MethodGet]; ok {
			return h, true
		}
	}
	h, ok := rt.handlers[anyMethod]
	return h, ok
}

func (rt *route[C]) allow() string {
	methods := make([]string, 0, len(rt.handlers))
	for m := range rt.handlers {
		if m != anyMethod {
			methods = append(methods, m)
		}
	}
	if slices.Contains(methods, http.MethodGet) && !slices.Contains(methods, http.MethodHead) {
		methods = append(methods, http.MethodHead)
	}
	slices.Sort(methods)
	return strings.Join(methods, ", ")
}

type mux[C handler.Context] struct {
	table        *routeTable[C]
	middlewares  []handler.Middleware[C]
	errorHandler handler.ErrorHandler[C]
	newContext   func(http.ResponseWriter, *http.Request) C
	logger       *slog.Logger
	notFound     handler.HandlerFunc[C]

	parent *mux[C]
	inline bool
	prefix string
	sealed bool
}

func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	m := &mux[C]{
		table: &routeTable[C]{
			serve:  http.NewServeMux(),
			routes: make(map[string]*route[C]),
		},
		errorHandler: defaultErrorHandler[C],
		logger:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.newContext == nil {
		m.newContext = func(w http.ResponseWriter, r *http.Request) C {
			var zero C
			if _, ok := any(zero).(*Context); ok {
				return any(NewContext(w, r)).(C)
			}
			panic(ErrNoContextFactory)
		}
	}
	return m
}

// ServeHTTP implements http.Handler.
func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ww := newResponseWriter(w)

	if _, pattern := m.table.serve.Handler(r); pattern == "" {
		ctx := m.newContext(ww, r)
		m.dispatch(ctx, ww, r, m.notFoundHandler())
		return
	}
	m.table.serve.ServeHTTP(ww, r)
}

// dispatch runs h through the root middleware and error handler with panic recovery.
func (m *mux[C]) dispatch(ctx C, ww *responseWriter, r *http.Request, h handler.HandlerFunc[C]) {
	defer func() {
		if p := recover(); p != nil {
			perr := &panicError{value: p, stack: debug.Stack()}
			if ww.Written() {
				m.logger.Error("panic after response written",
					slog.Any("value", perr.value),
					slog.String("stack", string(perr.stack)),
					logger.Path(r.URL.Path),
					logger.Method(r.Method),
					logger.StatusCode(ww.Status()),
				)
				return
			}
			m.errorHandler(ctx, perr)
		}
	}()

	if len(m.middlewares) > 0 {
		h = handler.Chain(h, m.middlewares...)
	}

	resp := h(ctx)
	if resp == nil {
		m.errorHandler(ctx, ErrNilResponse)
		return
	}
	// Middleware may have replaced the request (SetValue); render against the current one.
	if err := resp(ctx.ResponseWriter(), ctx.Request()); err != nil {
		m.errorHandler(ctx, err)
	}
}

func (m *mux[C]) notFoundHandler() handler.HandlerFunc[C] {
	if m.notFound != nil {
		return m.notFound
	}
	return func(C) handler.Response { return errorResponse(ErrNotFound) }
}

func errorResponse(err error) handler.Response {
	return func(http.ResponseWriter, *http.Request) error { return err }
}

func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodGet, pattern, h)
}

func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPost, pattern, h)
}

func (m *mux[C]) Put(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPut, pattern, h)
}

func (m *mux[C]) Delete(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodDelete, pattern, h)
}

func (m *mux[C]) Patch(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPatch, pattern, h)
}

func (m *mux[C]) Options(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodOptions, pattern, h)
}

func (m *mux[C]) Handle(pattern string, h handler.HandlerFunc[C]) {
	m.handle(anyMethod, pattern, h)
}

func (m *mux[C]) Method(pattern string, h handler.HandlerFunc[C], methods ...string) {
	if len(methods) == 0 {
		panic(fmt.Errorf("%w: no methods provided", ErrInvalidMethod))
	}
	for _, method := range methods {
		method = strings.ToUpper(method)
		if !knownMethods[method] {
			panic(fmt.Errorf("%w: %s", ErrInvalidMethod, method))
		}
		m.handle(method, pattern, h)
	}
}

func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	if m.inline {
		m.middlewares = append(m.middlewares, middlewares...)
		return
	}
	if m.sealed {
		panic("router: all middlewares must be defined before routes")
	}
	m.middlewares = append(m.middlewares, middlewares...)
}

func (m *mux[C]) With(middlewares ...handler.Middleware[C]) Router[C] {
	return &mux[C]{
		table:        m.table,
		middlewares:  slices.Clone(middlewares),
		errorHandler: m.errorHandler,
		newContext:   m.newContext,
		logger:       m.logger,
		parent:       m,
		inline:       true,
		prefix:       m.prefix,
	}
}

func (m *mux[C]) Group(fn func(r Router[C])) Router[C] {
	im := m.With()
	if fn != nil {
		fn(im)
	}
	return im
}

func (m *mux[C]) Route(prefix string, fn func(r Router[C])) Router[C] {
	if fn == nil {
		panic(fmt.Errorf("%w on '%s'", ErrNilSubrouter, prefix))
	}
	if prefix == "" || prefix[0] != '/' {
		panic(fmt.Errorf("%w: '%s'", ErrInvalidPattern, prefix))
	}
	im := m.With().(*mux[C])
	im.prefix = m.prefix + strings.TrimSuffix(prefix, "/")
	fn(im)
	return im
}

func (m *mux[C]) NotFound(h handler.HandlerFunc[C]) {
	m.root().notFound = h
}

func (m *mux[C]) Routes() []Route {
	m.table.mu.RLock()
	defer m.table.mu.RUnlock()
	return slices.Clone(m.table.order)
}

func (m *mux[C]) root() *mux[C] {
	curr := m
	for curr.inline && curr.parent != nil {
		curr = curr.parent
	}
	return curr
}

// inlineMiddlewares collects middleware from the chain of inline routers,
// outermost first.
func (m *mux[C]) inlineMiddlewares() []handler.Middleware[C] {
	var all []handler.Middleware[C]
	for curr := m; curr != nil && curr.inline; curr = curr.parent {
		all = append(slices.Clone(curr.middlewares), all...)
	}
	return all
}

func (m *mux[C]) handle(method, pattern string, fn handler.HandlerFunc[C]) {
	if pattern == "" || pattern[0] != '/' {
		panic(fmt.Errorf("%w: '%s'", ErrInvalidPattern, pattern))
	}
	pattern = m.prefix + pattern
	root := m.root()
	root.sealed = true

	mws := m.inlineMiddlewares()
	h := fn
	if len(mws) > 0 {
		h = handler.Chain(fn, mws...)
	}

	t := m.table
	t.mu.Lock()
	defer t.mu.Unlock()

	rt, ok := t.routes[pattern]
	if !ok {
		rt = &route[C]{
			pattern:     pattern,
			handlers:    make(map[string]handler.HandlerFunc[C]),
			middlewares: mws,
		}
		t.routes[pattern] = rt
		t.serve.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			root.serveRoute(rt, w, r)
		})
	}
	rt.handlers[method] = h
	t.order = append(t.order, Route{Method: method, Pattern: pattern})
}

func (m *mux[C]) serveRoute(rt *route[C], w http.ResponseWriter, r *http.Request) {
	ww := newResponseWriter(w)
	ctx := m.newContext(ww, r)

	m.table.mu.RLock()
	h, ok := rt.lookup(r.Method)
	allow := rt.allow()
	m.table.mu.RUnlock()

	if !ok {
		ww.Header().Set("Allow", allow)
		h = handler.Chain(func(C) handler.Response {
			return errorResponse(ErrMethodNotAllowed)
		}, rt.middlewares...)
	}
	m.dispatch(ctx, ww, r, h)
}
