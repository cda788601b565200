package main

import (
	"fmt"

	"eqcoach/models"

	"github.com/spf13/cobra"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List the built-in debate topics",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for i, topic := range models.DefaultDebateTopics {
			fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s\n", i+1, topic)
		}
	},
}
