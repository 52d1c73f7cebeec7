package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/trendbeat-hq/trendbeat-source-hub/internal/app"
	"github.com/trendbeat-hq/trendbeat-source-hub/internal/config"
	"github.com/trendbeat-hq/trendbeat-source-hub/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "hub start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("hub starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub, err := app.New(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize hub", "error", err)
		return err
	}

	if err := hub.Run(ctx); err != nil {
		return fmt.Errorf("hub run: %w", err)
	}

	return nil
}
