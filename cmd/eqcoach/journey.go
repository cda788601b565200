package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"eqcoach/models"
	"eqcoach/services"

	"github.com/spf13/cobra"
)

const cliUser = "cli@localhost"

var journeyCmd = &cobra.Command{
	Use:   "journey",
	Short: "Answer the reflective questions and get an EQ analysis",
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
		journeys := services.NewJourneyService(services.JourneyDeps{
			Analyzer: services.NewAnalyzer(gen, retryPolicy(cfg), logger),
			Log:      logger,
		})
		return runJourney(ctx, journeys, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func runJourney(ctx context.Context, journeys *services.JourneyService, in io.Reader, out io.Writer) error {
	snap, err := journeys.Start(ctx, cliUser)
	if err != nil {
		return err
	}
	for _, msg := range snap.Transcript {
		fmt.Fprintf(out, "coach> %s\n", msg.Text)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		reply, err := journeys.Respond(ctx, snap.ID, cliUser, strings.TrimSpace(scanner.Text()))
		if services.IsValidation(err) {
			fmt.Fprintln(out, "coach> Please share an answer before we move on.")
			continue
		}
		if err != nil {
			return err
		}
		for _, msg := range reply.Messages {
			fmt.Fprintf(out, "coach> %s\n", msg.Text)
		}
		if analysis := reply.State.AnalysisResults; analysis != nil && reply.State.Stage == models.StageAnalysis {
			fmt.Fprintf(out, "\nEQ score: %d (%s analysis)\n", analysis.Score, analysis.Source)
			for _, name := range models.EQCategories {
				if cat, ok := analysis.CategoryScores[name]; ok {
					fmt.Fprintf(out, "  %-22s %3d\n", name, cat.Score)
				}
			}
			fmt.Fprintln(out)
		}
		if reply.State.Complete {
			return nil
		}
	}
}
