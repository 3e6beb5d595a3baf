package main

import (
	"context"
	"fmt"
	"lincognito/internal/app"
	"lincognito/internal/config"
	"lincognito/pkg/logger"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const signalBufferSize = 1

var shutdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the weekly report scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		bootstrapLogger().WithError(err).Error("Failed to load configuration")
		return err
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info("Configuration loaded successfully")

	svc, err := app.InitializeService(ctx, cfg, log, app.Options{Mode: app.ModeServe})
	if err != nil {
		return fmt.Errorf("failed to initialize service: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- svc.Start()
	}()

	quit := make(chan os.Signal, signalBufferSize)
	signal.Notify(quit, shutdownSignals...)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutting down server...")
	case err := <-serverErr:
		if err != nil {
			log.WithError(err).Error("Server error")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		_ = svc.Shutdown(shutdownCtx)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := svc.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
		return err
	}

	log.Info("Server exited gracefully")
	return nil
}
