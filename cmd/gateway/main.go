// Package main starts the edge session and routing gateway.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sonr-io/motr-gateway/app/gateway"
	"github.com/sonr-io/motr-gateway/core/logger"
	"github.com/sonr-io/motr-gateway/middleware"
)

func main() {
	cfg, err := gateway.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", logger.Error(err))
		os.Exit(1)
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Env, cfg.AppName),
		logger.WithLevelString(cfg.LogLevel),
		logger.WithAttr(slog.String("version", cfg.Version)),
		logger.WithContextExtractors(middleware.RequestIDExtractor),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := gateway.New(ctx, cfg, gateway.WithLogger(log))
	if err != nil {
		log.Error("failed to assemble gateway", logger.Error(err))
		os.Exit(1)
	}

	log.Info("gateway starting",
		slog.String("addr", cfg.Server.Addr),
		slog.Any("bundles", app.Bundles()))

	if err := app.Run(ctx); err != nil {
		log.Error("gateway stopped with error", logger.Error(err))
		os.Exit(1)
	}
	log.Info("gateway stopped")
}
