// Package cmd wires the pipeline stages into the folklore-pipeline CLI.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"folklore-pipeline/config"
	"folklore-pipeline/logger"
)

const defaultConfigPath = "config.yaml"

var (
	cfgPath  string
	logLevel string

	cfg    *config.Config
	cfgErr error
)

var rootCmd = &cobra.Command{
	Use:           "folklore-pipeline",
	Short:         "Daily Russian folklore shorts: story rotation, stock images, TTS narration, slideshow render, YouTube publish",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()

		cfg, cfgErr = config.Load(cfgPath)
		if cfgErr != nil && cfgPath == defaultConfigPath && errors.Is(cfgErr, os.ErrNotExist) {
			cfg, cfgErr = config.Default(), nil
		}
		if cfgErr != nil {
			cfg = config.Default()
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if err := logger.Init(&cfg.Log); err != nil {
			fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath, "path to the pipeline config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

// requireConfig guards commands that cannot run on a broken config.
func requireConfig() error {
	if cfgErr != nil {
		return fmt.Errorf("load config: %w", cfgErr)
	}
	return nil
}

// Execute runs the CLI, cancelling in-flight work on SIGINT/SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
