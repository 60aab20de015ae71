package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/profile-fetcher/internal/app"
	"github.com/samvad-hq/profile-fetcher/internal/config"
	"github.com/samvad-hq/profile-fetcher/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "profilefetch failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("profilefetch starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher, err := app.NewFetcher(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize fetcher", "error", err)
		return err
	}

	if err := fetcher.Run(ctx); err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}
	return nil
}
