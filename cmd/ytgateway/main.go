package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"ytgateway/internal/api"
	"ytgateway/internal/cli"
	"ytgateway/internal/logging"
	"ytgateway/internal/resolver"
	"ytgateway/pkg/models"
)

const Version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewCLI(Version, runServer)
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func runServer(ctx context.Context, cfg *models.Config) error {
	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return err
	}
	defer logger.Sync()

	restore := logging.Install(logger)
	defer restore()

	res, err := resolver.New(cfg, logger)
	if err != nil {
		return err
	}

	server := api.NewServer(cfg, res, logger)
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	logger.Info("Server running",
		zap.String("url", "http://"+server.GetActualAddr()),
		zap.String("resolver", cfg.Resolver),
		zap.Stringer("upstream_timeout", cfg.UpstreamTimeout),
	)

	<-ctx.Done()
	logger.Info("Shutting down")

	return server.Stop()
}
