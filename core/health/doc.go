// Package health provides the liveness and readiness handlers.
//
//	r.Get("/health", health.Liveness[*gateway.Context](health.Info{
//		Service:     "motr-orchestrator",
//		Environment: cfg.App.Env,
//	}))
//	r.Get("/health/ready", health.Readiness[*gateway.Context](log,
//		health.Check{Name: "kv", Fn: store.Ping},
//		health.Check{Name: "queue", Fn: worker.Healthcheck},
//	))
//
// Liveness never touches dependencies. Readiness runs every check
// concurrently under a shared timeout and answers 503 when any fails.
package health
