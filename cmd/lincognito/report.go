package main

import (
	"context"
	"lincognito/internal/app"
	"lincognito/internal/config"
	"lincognito/pkg/logger"
	"time"

	"github.com/spf13/cobra"
)

func newWeeklyReportCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "weekly-report",
		Short: "Send the weekly performance report once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(cfg.Log.Level, cfg.Log.Format)

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			svc, err := app.InitializeService(ctx, cfg, log, app.Options{Mode: app.ModeJob})
			if err != nil {
				return err
			}
			defer svc.Shutdown(context.Background())

			return svc.RunWeeklyReport(ctx)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "maximum run time")
	return cmd
}
