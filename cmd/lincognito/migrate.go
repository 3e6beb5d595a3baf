package main

import (
	"context"
	"lincognito/internal/config"
	"lincognito/internal/migrate"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const migrateTimeout = 2 * time.Minute

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := bootstrapLogger()

			dbCfg, err := config.LoadDatabase()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
			defer cancel()

			db, err := migrate.Open(ctx, dbCfg.DSN())
			if err != nil {
				return err
			}
			defer db.Close()

			result, err := migrate.Run(ctx, db)
			if err != nil {
				return err
			}

			log.WithFields(logrus.Fields{
				"from_version": result.FromVersion,
				"to_version":   result.ToVersion,
				"applied":      result.Applied,
			}).Info("Migration finished")
			return nil
		},
	}
}
