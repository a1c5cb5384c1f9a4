package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"nexus/handler"
	"nexus/internal/app"
	"nexus/internal/config"
	"nexus/internal/logging"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
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

	// ---- Components ----
	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to assemble app", zap.Error(err))
	}

	// ---- Handler ----
	h, err := handler.NewHandler(a.Store, a.Catalog, logger.Named("handler"))
	if err != nil {
		logger.Fatal("failed to create handler", zap.Error(err))
	}

	lambda.Start(h.Handle)
}
