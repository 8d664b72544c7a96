package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch new WHOOP data",
		Long:  "Fetches everything updated since the last sync, or the latest cycles on the first run.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.requireCredentials(); err != nil {
				return err
			}

			if err := a.sync.PerformSmartSync(ctx); err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.sync.Progress())
			return nil
		},
	}
}
