// Package logger configures the global zerolog logger for the pipeline.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"folklore-pipeline/config"
)

// Init sets up the global logger from config. Call once at startup;
// every package then logs through the zerolog/log global with a
// per-stage field.
func Init(cfg *config.LogConfig) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = os.Stdout
	if cfg.FilePath != "" {
		file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		output = file
	}

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: "15:04:05",
		}
	}

	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	return nil
}

// Stage returns a logger tagged with the pipeline stage name.
func Stage(name string) zerolog.Logger {
	return log.With().Str("stage", name).Logger()
}
