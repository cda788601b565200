package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"eqcoach/config"
	"eqcoach/internal/logging"
	"eqcoach/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath string
	verbose    bool
	timeout    time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "eqcoach",
	Short: "Emotional intelligence and debate coach",
	Long: `eqcoach runs the EQ coach from the terminal.

Without a Gemini API key every analysis uses the local heuristics.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		var err error
		logger, err = logging.New(level, true)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout for model calls")

	rootCmd.AddCommand(journeyCmd, analyzeCmd, topicsCmd, addUserCmd)
}

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.LoadConfig(configPath)
}

// newGenerator returns nil when no API key is configured; services then fall
// back to local analysis.
func newGenerator(ctx context.Context, cfg *config.Config) (services.Generator, error) {
	if cfg.Gemini.ApiKey == "" {
		return nil, nil
	}
	client, err := services.NewGeminiClient(ctx, services.GeminiOptions{
		APIKey:          cfg.Gemini.ApiKey,
		Model:           cfg.Gemini.Model,
		Temperature:     cfg.Gemini.Temperature,
		TopK:            cfg.Gemini.TopK,
		TopP:            cfg.Gemini.TopP,
		MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func retryPolicy(cfg *config.Config) services.RetryPolicy {
	return services.RetryPolicy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Backoff:     services.ExponentialBackoff(cfg.Retry.BaseDelay),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
