package main

import (
	"context"
	"encoding/json"
	"strings"

	"eqcoach/services"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <text>",
	Short: "Analyze a single message and print the result as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		gen, err := newGenerator(ctx, cfg)
		if err != nil {
			return err
		}
		analyzer := services.NewAnalyzer(gen, retryPolicy(cfg), logger)
		result := analyzer.AnalyzeResponse(ctx, strings.Join(args, " "))

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}
