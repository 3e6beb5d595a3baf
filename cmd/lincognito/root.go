package main

import (
	"lincognito/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const defaultEnvFile = ".env"

var envFile string

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lincognito",
		Short:         "Lincognito API server and maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			loadEnv()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", defaultEnvFile, "dotenv file loaded before reading configuration")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newWeeklyReportCmd())

	return rootCmd
}

// loadEnv never overrides variables already set in the process environment.
func loadEnv() {
	if envFile == "" {
		return
	}
	if err := godotenv.Load(envFile); err != nil {
		logrus.WithField("file", envFile).Debug("dotenv file not loaded, using process environment")
	}
}

// bootstrapLogger is used until the configuration, and with it the log level, is known.
func bootstrapLogger() *logrus.Logger {
	return logger.New("info", logger.FormatJSON)
}
