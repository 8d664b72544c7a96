package main

import (
	"errors"
	"fmt"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/garrettladley/pulse/internal/readiness"
)

func readinessCmd() *cobra.Command {
	var (
		day    string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Show today's readiness and training recommendation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			at := time.Now()
			if day != "" {
				parsed, err := time.ParseInLocation(time.DateOnly, day, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --day %q: %w", day, err)
				}
				at = parsed
			}

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			eval, err := a.engine.Evaluate(ctx, at)
			if errors.Is(err, readiness.ErrNoData) {
				return errors.New("no scored recovery yet, run `pulse sync` first")
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := go_json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(eval)
			}

			p := readiness.Present(eval.Snapshot)
			card := readiness.PresentRecommendation(eval.Recommendation)
			fmt.Fprintf(out, "%s %s  %d (%s %s)\n", p.Emoji, p.Label, p.Score, p.Level.Emoji(), p.Level)
			fmt.Fprintf(out, "\n%s\n%s\n%s\n", card.Title, card.Headline, card.Guidance)
			fmt.Fprintf(out, "\ntarget: %s\navoid:  %s\n", card.Target, card.Avoid)
			fmt.Fprintf(out, "\n%s. %s\n", card.Confidence, card.Reasoning)
			return nil
		},
	}

	cmd.Flags().StringVar(&day, "day", "", "evaluate this day (YYYY-MM-DD) instead of today")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the evaluation as JSON")
	return cmd
}
