// Package main provides the coverletter CLI: generation from the terminal, the web front end
// and a local mock of the generation API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonathan/cover-letter-generator/internal/config"
	"github.com/jonathan/cover-letter-generator/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "coverletter",
	Short: "AI cover letter generator",
	Long: `coverletter turns a résumé and a job posting into a tailored cover letter using the
generation API, and exports it as PDF, DOCX or plain text.

Configuration is read from coverletter.yaml (or --config), COVERLETTER_* environment
variables and flags, in increasing order of precedence.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to a config file (yaml, json or toml)")
	pf.String("api-url", "", "Base URL of the generation API (default "+config.DefaultAPIURL+")")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: console or json")
}

// setup loads configuration and builds the logger before any subcommand runs.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return err
	}
	cfg = loaded

	logger, err = logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Debug("configuration loaded", zap.String("api_url", cfg.APIURL))
	return nil
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	err := rootCmd.Execute()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
