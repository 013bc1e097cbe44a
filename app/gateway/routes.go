package gateway

import (
	"net/http"
	"slices"
	"strings"

	"github.com/sonr-io/motr-gateway/core/handler"
	"github.com/sonr-io/motr-gateway/core/health"
	"github.com/sonr-io/motr-gateway/core/kv"
	"github.com/sonr-io/motr-gateway/core/proxy"
	"github.com/sonr-io/motr-gateway/core/response"
	"github.com/sonr-io/motr-gateway/core/router"
	"github.com/sonr-io/motr-gateway/middleware"
)

func (a *App) routes() router.Router[*Context] {
	r := router.New(
		router.WithContextFactory(newContext),
		router.WithLogger[*Context](a.logger),
		router.WithErrorHandler(response.JSONErrorHandler[*Context](
			response.WithExposeInternal(!a.config.IsProduction()),
			response.WithErrorLogger(a.logger),
			response.WithClock(a.now),
		)),
	)

	security := middleware.GatewaySecurity
	security.Development = !a.config.IsProduction()
	security.Skip = func(ctx handler.Context) bool {
		return strings.HasPrefix(ctx.Request().URL.Path, "/api/identity/")
	}

	r.Use(
		middleware.RequestID[*Context](),
		middleware.ClientIP[*Context](),
		middleware.Logging[*Context](a.logger),
		middleware.RequestMetrics[*Context](a.metrics),
		middleware.SecurityHeadersWithConfig[*Context](security),
	)

	r.Get("/health", health.Liveness[*Context](health.Info{
		Service:     a.config.AppName,
		Environment: a.config.Env,
		Now:         a.now,
	}))
	r.Get("/health/ready", health.Readiness[*Context](a.logger, a.readinessChecks()...))
	metrics := response.Handler(a.metrics.Handler())
	r.Get("/metrics", func(*Context) handler.Response { return metrics })

	r.Method("/pay", a.paymentManifest, http.MethodGet, http.MethodPost)
	r.Method("/pay/{$}", a.paymentManifest, http.MethodGet, http.MethodPost)

	api := r.With(middleware.CORSWithConfig[*Context](a.corsConfig()))
	api.Get("/api/version", a.version)
	api.Handle("/api/identity/{path...}", proxy.Handler[*Context](a.identity, "/api/identity/"))

	body := api.With(middleware.BodyLimit[*Context](a.config.BodyLimit))
	body.Get("/api/session", a.getSession)
	body.Post("/api/session/preferences", a.updatePreferences)
	body.Post("/api/session/authenticate", a.authenticate)
	body.Post("/api/session/logout", a.logout)
	body.Post("/api/session/auth/visit", a.recordVisit)
	body.Post("/api/session/auth/registration-started", a.registrationStarted)
	body.Post("/api/session/auth/registration-completed", a.registrationCompleted)

	body.Post("/api/auth/otp-status", a.otpStatus)
	limited := body.With(middleware.RateLimit[*Context](middleware.RateLimitConfig{
		Limiter:    a.limiter,
		SetHeaders: true,
	}))
	limited.Post("/api/auth/send-otp", a.sendOTP)
	limited.Post("/api/auth/verify-otp", a.verifyOTP)

	body.Get("/api/chains", a.listChains)
	body.Get("/api/chains/{$}", a.getChain)
	body.Get("/api/chains/{id}", a.getChain)

	r.Get("/{$}", a.root)
	for _, name := range bundleNames {
		r.Get("/"+name, a.frontend)
		r.Get("/"+name+"/", a.frontend)
	}
	r.Get("/shared/{path...}", a.sharedAsset)
	r.NotFound(a.frontend)

	return r
}

func (a *App) corsConfig() middleware.CORSConfig {
	cfg := middleware.CORSConfig{
		AllowOrigins:     a.config.CORS.AllowOrigins,
		AllowCredentials: a.config.CORS.AllowCredentials,
		MaxAge:           a.config.CORS.MaxAge,
	}
	if a.config.CORS.AllowDomain != "" {
		allowSub := middleware.AllowOriginSubdomain(a.config.CORS.AllowDomain)
		exact := a.config.CORS.AllowOrigins
		cfg.AllowOriginFunc = func(origin string) bool {
			return slices.Contains(exact, origin) || allowSub(origin)
		}
	}
	return cfg
}

func (a *App) readinessChecks() []health.Check {
	checks := []health.Check{
		{Name: "queue_worker", Fn: a.worker.Healthcheck},
		{Name: "queue_storage", Fn: a.storage.Healthcheck},
	}
	if p, ok := a.store.(kv.Pinger); ok {
		checks = append([]health.Check{{Name: "kv", Fn: p.Ping}}, checks...)
	}
	return checks
}

func (a *App) version(*Context) handler.Response {
	return response.JSON(map[string]string{
		"version":     a.config.Version,
		"environment": a.config.Env,
	})
}
