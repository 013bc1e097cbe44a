// Package logger builds *slog.Logger values and provides attribute helpers
// so that every component logs the same keys.
//
// New picks the handler from the deployment environment: development logs
// text and staging logs JSON, both at debug level; production logs JSON at
// info level.
// WithLevelString overrides the level from LOG_LEVEL.
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, cfg.AppName),
//		logger.WithLevelString(cfg.LogLevel),
//		logger.WithContextExtractors(middleware.RequestIDExtractor),
//	)
//	log.InfoContext(ctx, "otp delivery scheduled",
//		logger.Component("otp"),
//		logger.Email(addr),
//		logger.TaskID(id))
//
// Context extractors copy request-scoped values such as the request id into
// every record logged with a context. Discard returns a logger that drops
// everything and is the default for components built without one.
package logger
