// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-pipeline CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-pipeline/internal/config"
	"github.com/pdiddy/paper-pipeline/internal/logging"
	"github.com/pdiddy/paper-pipeline/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the validated configuration, loaded before any subcommand runs.
	cfg types.PipelineConfig

	logger = zerolog.Nop()
)

// rootCmd is the base command for the paper-pipeline CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-pipeline",
	Short: "Score, sample, and summarize discipline paper corpora",
	Long: `paper-pipeline turns per-discipline corpora of academic papers
(gzip-compressed JSONL, one file per discipline) into two artifacts for the
visualization front end: a year-balanced sample of scored papers and
full-corpus statistics per discipline.

Settings come from defaults, an optional paper-pipeline.yaml (working
directory or ~/.config/paper-pipeline), a .env file, PAPER_PIPELINE_*
environment variables, and command flags, in increasing precedence.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-pipeline.yaml or ~/.config/paper-pipeline/paper-pipeline.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error, disabled")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func loadConfig(cmd *cobra.Command, args []string) error {
	// A missing .env is the common case.
	_ = godotenv.Load()

	cfgFile, _ := cmd.Flags().GetString("config")
	used, err := config.Init(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}

	loaded, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	cfg = loaded

	opts := logging.OptionsFrom(cfg.Log)
	opts.Component = "paper-pipeline"
	logger = logging.New(opts)
	if used != "" {
		logger.Debug().Str("file", used).Msg("using config file")
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
