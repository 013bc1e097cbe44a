package gateway

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"net/http"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sonr-io/motr-gateway/core/cookie"
	"github.com/sonr-io/motr-gateway/core/email"
	"github.com/sonr-io/motr-gateway/core/kv"
	"github.com/sonr-io/motr-gateway/core/logger"
	"github.com/sonr-io/motr-gateway/core/otp"
	"github.com/sonr-io/motr-gateway/core/proxy"
	"github.com/sonr-io/motr-gateway/core/queue"
	"github.com/sonr-io/motr-gateway/core/router"
	"github.com/sonr-io/motr-gateway/core/server"
	"github.com/sonr-io/motr-gateway/core/session"
	"github.com/sonr-io/motr-gateway/core/static"
	redisdb "github.com/sonr-io/motr-gateway/integration/database/redis"
	"github.com/sonr-io/motr-gateway/integration/email/postmark"
	"github.com/sonr-io/motr-gateway/integration/email/smtp"
	"github.com/sonr-io/motr-gateway/middleware"
	"github.com/sonr-io/motr-gateway/pkg/ratelimiter"
)

// SharedDir is the directory under STATIC_DIR served at /shared/.
const SharedDir = "shared"

// App wires the gateway components and owns their background goroutines.
type App struct {
	config Config
	logger *slog.Logger
	now    func() time.Time

	store    kv.Store
	memory   *kv.MemoryStore
	closer   io.Closer
	sender   email.EmailSender
	storage  *queue.MemoryStorage
	enqueuer *queue.Enqueuer
	worker   *queue.Worker
	gate     *otp.Gate
	cookies  *cookie.Manager
	sessions *session.Manager
	limiter  *ratelimiter.Limiter
	identity *proxy.Proxy
	registry *Registry
	metrics  *middleware.Metrics
	server   *server.Server
	router   router.Router[*Context]

	transport http.RoundTripper
	bundleFS  map[string]fs.FS
	sharedFS  fs.FS
	bundles   map[string]*static.Bundle
	shared    *static.Assets
}

type AppOption func(*App) error

// New assembles the gateway from cfg. A non-empty REDIS_URL selects the Redis
// KV backend, otherwise records live in process memory.
func New(ctx context.Context, cfg Config, opts ...AppOption) (*App, error) {
	app := &App{
		config:   cfg,
		logger:   logger.Discard(),
		now:      time.Now,
		bundleFS: make(map[string]fs.FS),
	}
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	steps := []func(context.Context) error{
		app.setupStore,
		app.setupSender,
		app.setupQueue,
		app.setupSessions,
		app.setupIdentity,
		app.setupLimiter,
		app.setupStatic,
		app.setupServer,
		app.setupRegistry,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			app.close()
			return nil, err
		}
	}

	if app.metrics == nil {
		app.metrics = middleware.NewMetrics("gateway")
	}
	app.router = app.routes()
	return app, nil
}

func (a *App) setupStore(ctx context.Context) error {
	if a.store != nil {
		return nil
	}
	if a.config.Redis.ConnectionURL == "" {
		a.memory = kv.NewMemoryStore(kv.WithClock(a.now), kv.WithLogger(a.logger))
		a.store = a.memory
		a.logger.InfoContext(ctx, "using in-memory kv store", logger.Component("kv"))
		return nil
	}

	client, err := redisdb.Connect(ctx, a.config.Redis)
	if err != nil {
		return errors.Join(ErrStoreSetup, err)
	}
	a.closer = client
	a.store = redisdb.NewKVStore(client, a.config.Redis.ScanBatchSize)
	a.logger.InfoContext(ctx, "using redis kv store", logger.Component("kv"))
	return nil
}

func (a *App) setupSender(context.Context) error {
	if a.sender != nil {
		return nil
	}
	if err := a.config.Email.Validate(); err != nil {
		return errors.Join(ErrSenderSetup, err)
	}

	switch a.config.Email.Provider {
	case email.ProviderPostmark:
		c, err := postmark.New(a.config.Postmark)
		if err != nil {
			return errors.Join(ErrSenderSetup, err)
		}
		a.sender = c
	case email.ProviderSMTP:
		c, err := smtp.New(a.config.SMTP)
		if err != nil {
			return errors.Join(ErrSenderSetup, err)
		}
		a.sender = c
	default:
		a.sender = email.NewDevSender(a.config.Email.DevDir,
			email.WithDevClock(a.now),
			email.WithDevLogger(a.logger))
	}
	return nil
}

func (a *App) setupQueue(context.Context) error {
	a.storage = queue.NewMemoryStorageFromConfig(a.config.Queue,
		queue.WithStorageClock(a.now),
		queue.WithMemoryStorageLogger(a.logger))

	enq, err := queue.NewEnqueuerFromConfig(a.config.Queue, a.storage, queue.WithEnqueuerClock(a.now))
	if err != nil {
		return errors.Join(ErrQueueSetup, err)
	}
	a.enqueuer = enq

	worker, err := queue.NewWorkerFromConfig(a.config.Queue, a.storage, queue.WithWorkerLogger(a.logger))
	if err != nil {
		return errors.Join(ErrQueueSetup, err)
	}
	worker.RegisterHandlers(otp.NewDeliverer(a.store, a.sender,
		otp.WithDeliveryClock(a.now),
		otp.WithDeliveryLogger(a.logger),
	).Handler())
	a.worker = worker

	a.gate = otp.NewFromConfig(a.config.OTP, a.store, a.enqueuer,
		otp.WithClock(a.now),
		otp.WithLogger(a.logger))
	return nil
}

func (a *App) setupSessions(context.Context) error {
	var opts []cookie.Option
	if a.config.IsProduction() {
		opts = append(opts, cookie.WithSecure(true))
	}
	cm, err := cookie.NewFromConfig(a.config.Cookie, opts...)
	if err != nil {
		return errors.Join(ErrCookieSetup, err)
	}
	a.cookies = cm
	a.sessions = session.NewFromConfig(a.config.Session, a.store, cm,
		session.WithClock(a.now),
		session.WithLogger(a.logger))
	return nil
}

func (a *App) setupIdentity(context.Context) error {
	opts := []proxy.Option{proxy.WithLogger(a.logger)}
	if a.transport != nil {
		opts = append(opts, proxy.WithTransport(a.transport))
	}
	p, err := proxy.NewFromConfig(a.config.Identity, opts...)
	if err != nil {
		return errors.Join(ErrProxySetup, err)
	}
	a.identity = p
	return nil
}

func (a *App) setupLimiter(context.Context) error {
	l, err := ratelimiter.New(a.config.RateLimit,
		ratelimiter.WithClock(a.now),
		ratelimiter.WithLogger(a.logger))
	if err != nil {
		return errors.Join(ErrLimiterSetup, err)
	}
	a.limiter = l
	return nil
}

// setupStatic opens one bundle per name under STATIC_DIR. A bundle that is
// missing or has no index.html is skipped with a warning and answers 404.
func (a *App) setupStatic(ctx context.Context) error {
	a.bundles = make(map[string]*static.Bundle, len(bundleNames))
	for _, name := range bundleNames {
		fsys, ok := a.bundleFS[name]
		if !ok {
			var err error
			if fsys, err = static.DirFS(filepath.Join(a.config.StaticDir, name)); err != nil {
				a.logger.WarnContext(ctx, "bundle not available",
					logger.Component("static"), logger.Bundle(name), logger.Error(err))
				continue
			}
		}
		b, err := static.NewBundle(name, fsys)
		if err != nil {
			a.logger.WarnContext(ctx, "bundle not available",
				logger.Component("static"), logger.Bundle(name), logger.Error(err))
			continue
		}
		a.bundles[name] = b
	}

	shared := a.sharedFS
	if shared == nil {
		fsys, err := static.DirFS(filepath.Join(a.config.StaticDir, SharedDir))
		if err != nil {
			a.logger.DebugContext(ctx, "shared assets not available",
				logger.Component("static"), logger.Error(err))
		}
		shared = fsys
	}
	if shared != nil {
		a.shared = static.NewAssets(shared)
	}
	return nil
}

func (a *App) setupServer(context.Context) error {
	if a.server != nil {
		return nil
	}
	s, err := server.NewFromConfig(a.config.Server, server.WithLogger(a.logger))
	if err != nil {
		return errors.Join(ErrServerSetup, err)
	}
	a.server = s
	return nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router
}

// Bundles returns the names of the bundles that were opened.
func (a *App) Bundles() []string {
	names := make([]string, 0, len(a.bundles))
	for _, name := range bundleNames {
		if _, ok := a.bundles[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Run serves HTTP and runs the queue worker and the reapers until ctx is
// cancelled or one of them fails. The Redis connection is closed on return.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(a.server.Run(ctx, a.router))
	g.Go(a.worker.Run(ctx))
	g.Go(a.storage.Run(ctx))
	g.Go(a.limiter.Run(ctx))
	if a.memory != nil {
		g.Go(func() error { return a.memory.Run(ctx) })
	}

	err := g.Wait()
	return errors.Join(err, a.close())
}

func (a *App) close() error {
	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	return err
}

// WithLogger sets the logger shared by every component.
func WithLogger(l *slog.Logger) AppOption {
	return func(app *App) error {
		if l == nil {
			return ErrNilOption
		}
		app.logger = l
		return nil
	}
}

// WithClock overrides the time source of sessions, OTP, queue and limiter.
func WithClock(now func() time.Time) AppOption {
	return func(app *App) error {
		if now == nil {
			return ErrNilOption
		}
		app.now = now
		return nil
	}
}

// WithStore replaces the KV backend selected from configuration.
func WithStore(store kv.Store) AppOption {
	return func(app *App) error {
		if store == nil {
			return ErrNilOption
		}
		app.store = store
		return nil
	}
}

// WithEmailSender replaces the sender selected by EMAIL_PROVIDER.
func WithEmailSender(sender email.EmailSender) AppOption {
	return func(app *App) error {
		if sender == nil {
			return ErrNilOption
		}
		app.sender = sender
		return nil
	}
}

// WithBundles serves the given file systems instead of STATIC_DIR/<name>.
func WithBundles(bundles map[string]fs.FS) AppOption {
	return func(app *App) error {
		if bundles == nil {
			return ErrNilOption
		}
		maps.Copy(app.bundleFS, bundles)
		return nil
	}
}

// WithSharedAssets serves fsys at /shared/.
func WithSharedAssets(fsys fs.FS) AppOption {
	return func(app *App) error {
		if fsys == nil {
			return ErrNilOption
		}
		app.sharedFS = fsys
		return nil
	}
}

// WithIdentityTransport sets the round tripper used by the identity proxy.
func WithIdentityTransport(rt http.RoundTripper) AppOption {
	return func(app *App) error {
		if rt == nil {
			return ErrNilOption
		}
		app.transport = rt
		return nil
	}
}

// WithServer replaces the HTTP server built from configuration.
func WithServer(s *server.Server) AppOption {
	return func(app *App) error {
		if s == nil {
			return ErrNilOption
		}
		app.server = s
		return nil
	}
}

// WithMetrics replaces the Prometheus collectors.
func WithMetrics(m *middleware.Metrics) AppOption {
	return func(app *App) error {
		if m == nil {
			return ErrNilOption
		}
		app.metrics = m
		return nil
	}
}
