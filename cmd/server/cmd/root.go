// Package cmd defines the asr-server command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Brownie44l1/asr-api/internal/config"
	"github.com/Brownie44l1/asr-api/internal/logging"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "asr-server",
	Short: "Speech-to-text HTTP service backed by an ONNX CTC model",
	Long: `asr-server loads a pretrained CTC speech model once at startup and
serves POST /transcribe, turning uploaded WAV files into text.

Running without a subcommand is the same as "asr-server serve".`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load settings from this .env file (default: .env or .env.local if present)")
	addServeFlags(rootCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(gatewayCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves settings from the env file, the environment and
// finally any flags set on cmd.
func loadConfig(cmd *cobra.Command, apply func(*cobra.Command, *config.Config)) (config.Config, error) {
	loaded, err := config.LoadEnv(envFile)
	if err != nil {
		return config.Config{}, err
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, fmt.Errorf("invalid environment: %w", err)
	}

	apply(cmd, &cfg)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	if loaded != "" {
		fmt.Fprintf(os.Stderr, "loaded environment from %s\n", loaded)
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	log, err := logging.NewLogger(cfg.LogDevelopment)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
