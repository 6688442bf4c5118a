package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/healthpulse/internal/cli"
	"github.com/terraincognita07/healthpulse/internal/config"
	"github.com/terraincognita07/healthpulse/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "healthpulse",
		Short:         "HealthPulse community symptom dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("db", config.DBPathFromEnv(), "Path to the SQLite database")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(pruneReportsCmd())
	return rootCmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HealthPulse API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if dbPath, _ := cmd.Flags().GetString("db"); cmd.Flags().Changed("db") {
				cfg.DBPath = dbPath
			}
			time.Local = cfg.Location

			logger := logging.New(logging.Options{
				Level:   cfg.LogLevel,
				File:    cfg.LogFile,
				Console: cfg.LogToConsole,
				Pretty:  cfg.IsDev(),
			})
			for _, warning := range cfg.Warnings {
				logger.Warn().Msg(warning)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, logger)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			return cli.RunMigrateCommand(dbPath, cmd.OutOrStdout(), maintenanceLogger())
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default map wards into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			return cli.RunSeedCommand(dbPath, cmd.OutOrStdout(), maintenanceLogger())
		},
	}
}

func pruneReportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune-reports",
		Short: "Delete anonymous reports older than a retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			olderThan, _ := cmd.Flags().GetDuration("older-than")
			return cli.RunPruneReportsCommand(dbPath, olderThan, time.Now(), cmd.OutOrStdout(), maintenanceLogger())
		},
	}
	cmd.Flags().Duration("older-than", 90*24*time.Hour, "Delete reports created before now minus this duration")
	return cmd
}

func maintenanceLogger() zerolog.Logger {
	return logging.New(logging.Options{
		Level:   envOr("LOG_LEVEL", "warn"),
		Console: true,
		Pretty:  true,
	})
}

func envOr(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
