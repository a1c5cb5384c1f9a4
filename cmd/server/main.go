package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"nexus/internal/app"
	"nexus/internal/config"
	"nexus/internal/httpapi"
	"nexus/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to assemble app", zap.Error(err))
	}
	defer a.Close()

	router, err := httpapi.NewRouter(httpapi.Deps{
		Chat:        a.Store,
		Dashboard:   a.Catalog,
		Logger:      logger.Named("http"),
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatal("failed to create router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := httpapi.Serve(ctx, srv, logger); err != nil {
		logger.Error("http server stopped", zap.Error(err))
	}
}
