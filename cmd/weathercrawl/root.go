package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/weather-crawler/pkg/config"
	"github.com/user/weather-crawler/pkg/logger"
)

//nolint:gochecknoglobals // Global vars needed for cobra CLI
var (
	envFile  string
	logLevel string

	cfg *config.Config
	log *zap.Logger
)

//nolint:gochecknoglobals // Cobra commands are typically global
var rootCmd = &cobra.Command{
	Use:   "weathercrawl",
	Short: "Collect daily temperature history for a weather station",
	Long: `weathercrawl backfills and updates a station's daily max/min/mean
temperatures from the climate data site into SQLite or PostgreSQL, and
serves monthly and daily aggregates over HTTP.`,
	SilenceUsage:      true,
	PersistentPreRunE: initApp,
	PersistentPostRun: func(*cobra.Command, []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional env file with configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

func initApp(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.LoadFile(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log, err = logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log.Debug("configuration loaded",
		zap.String("command", cmd.Name()),
		zap.String("db_driver", cfg.DBDriver),
		zap.String("fetch_mode", cfg.FetchMode),
		zap.String("location", cfg.LocationName),
	)
	return nil
}
