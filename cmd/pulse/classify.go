package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/garrettladley/pulse/internal/classify"
)

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Label every stored workout with a training intent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.settings.ClassifyAllWorkouts(ctx); err != nil {
				return err
			}
			return printIntentCounts(cmd, a)
		},
	}
}

func printIntentCounts(cmd *cobra.Command, a *app) error {
	counts, err := a.repo.Workouts.CountByIntent(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to count intents: %w", err)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, intent := range classify.Intents() {
		fmt.Fprintf(w, "%s\t%d\n", intent, counts[string(intent)])
	}
	return w.Flush()
}
