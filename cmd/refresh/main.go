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

// refresh performs a one-shot batch refresh of the given source ids (all
// enabled sources when none are given) and exits.
func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "refresh failed: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer hub.Close()

	sourceIDs := args
	if len(sourceIDs) == 0 {
		sourceIDs = hub.EnabledSourceIDs()
	}
	if len(sourceIDs) == 0 {
		return fmt.Errorf("no sources to refresh")
	}

	result := hub.Refresher().RefreshMany(ctx, sourceIDs)
	logger.InfoObj("batch refresh finished", "batch_result", map[string]any{
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	})

	if result.Succeeded == 0 && result.Failed > 0 {
		return fmt.Errorf("all %d sources failed to refresh", result.Failed)
	}
	return nil
}
