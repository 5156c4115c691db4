// Command orderbatch runs the scheduled order processing batch.
package main

import (
	"context"
	_ "embed"
	"os"
	"os/signal"
	"syscall"

	"orderbatch/internal/app"
	"orderbatch/internal/config"
	"orderbatch/pkg/batch/support/logger"
)

//go:embed config.yaml
var embeddedConfig []byte

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(config.EmbeddedConfig(embeddedConfig))
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	application, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize application: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		logger.Errorf("Application terminated with error: %v", err)
		os.Exit(1)
	}
}
