package main

import (
	clts "botdash/clients"
	"botdash/config"
	"botdash/internal/app"
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := config.LoadDotEnv(); err != nil {
		logger.Warn("failed to load .env file", zap.Error(err))
	}

	// Load config from environment variables
	cfg := config.Load()
	if err := cfg.Validate().Err(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	logger.Info("starting dashboard",
		zap.Bool("isProd", cfg.IsProd),
		zap.String("apiUrl", cfg.Dashboard.APIURL),
	)

	logger.Info("instantiating clients")
	clients := clts.NewClients(logger, cfg)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	runner := app.NewRunner(clients, config.NewLiveConfig(cfg))

	// Reload .env and the environment on SIGHUP
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				if err := config.ReloadDotEnv(); err != nil {
					logger.Warn("failed to reload .env file", zap.Error(err))
				}
				if err := runner.Reload(config.Load()); err != nil {
					logger.Error("failed to reload configuration", zap.Error(err))
				}
			}
		}
	}()

	if err := runner.Run(ctx); err != nil {
		logger.Fatal("runner failed", zap.Error(err))
	}
}
