package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/linetrack/internal/app"
	"github.com/mamadbah2/linetrack/internal/config"
	"github.com/mamadbah2/linetrack/pkg/logger"
)

var (
	envFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:          "linetrack",
	Short:        "Offline-first production tracking agent",
	Long:         `Serves the line tablets, keeps reference data cached and replays hourly entries captured while the backend was unreachable.`,
	RunE:         runServe,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file (defaults to ./.env when present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd, syncCmd, queueCmd, cacheCmd)
}

// bootstrap loads configuration, builds the logger and wires the application.
func bootstrap(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	baseLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(baseLogger)

	a, err := app.New(ctx, cfg, baseLogger)
	if err != nil {
		_ = baseLogger.Sync()
		return nil, err
	}
	return a, nil
}

// shutdown closes the application and flushes the logger.
func shutdown(ctx context.Context, a *app.App) {
	if err := a.Close(ctx); err != nil {
		a.Logger.Error("shutdown failed", zap.Error(err))
	}
	_ = a.Logger.Sync()
}
