// Command qtbook builds, inspects and serves Quantik opening books.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yourusername/quantikbook/internal/config"
)

const version = "0.1.0"

var (
	configPath string
	logLevel   string
	cfg        config.Config

	rootCmd = &cobra.Command{
		Use:   "qtbook",
		Short: "Build and query the Quantik opening book",
		Long: `qtbook precomputes the first plies of Quantik up to symmetry and
stores them as a compact binary opening book. The book can be queried
from the command line or served over HTTP and websockets.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(buildCmd, binarizeCmd, evalCmd, serveCmd, symmetriesCmd)
}

// setup loads the configuration and installs the global logger.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	setupLogging(cfg.Log)
	return nil
}

func setupLogging(lc config.LogConfig) {
	zerolog.SetGlobalLevel(lc.ZerologLevel())
	if lc.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}
