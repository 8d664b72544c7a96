package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/garrettladley/pulse/internal/settings"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change pulse settings",
	}

	cmd.AddCommand(
		settingsShowCmd(),
		settingsWindowCmd(),
		settingsClearCacheCmd(),
		settingsResetCmd(),
	)
	return cmd
}

func settingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			st := a.settings.State()
			state, err := a.repo.SyncState.Get(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read sync state: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "historical window: %s\n", settings.WindowLabel(st.HistoricalWindowYears))
			fmt.Fprintf(out, "backfill complete: %t\n", state.BackfillComplete)
			if state.LastSync != nil {
				fmt.Fprintf(out, "last sync:         %s\n", state.LastSync.Local().Format("2006-01-02 15:04"))
			} else {
				fmt.Fprintln(out, "last sync:         never")
			}
			return nil
		},
	}
}

func settingsWindowCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "window <years|all>",
		Short: "Set the historical window and reload data for it",
		Long:  "Accepts 5 to 10 years, or 0/all for all-time. The new window is saved at once; the reload asks for confirmation.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			years, err := parseWindow(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.settings.UpdateHistoricalWindow(ctx, years)
			if err != nil {
				return err
			}
			if c == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Historical window already %s\n", settings.WindowLabel(years))
				return nil
			}
			return resolve(cmd, a, c, yes, "Historical window applied")
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "reload without asking")
	return cmd
}

func settingsClearCacheCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear-cache",
		Short: "Drop cached readiness analysis",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.settings.RequestClearAnalysisCache()
			if err != nil {
				return err
			}
			return resolve(cmd, a, c, yes, "Analysis cache cleared")
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "clear without asking")
	return cmd
}

func settingsResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete derived data and download the historical window again",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.requireCredentials(); err != nil {
				return err
			}

			c, err := a.settings.RequestResetAllData()
			if err != nil {
				return err
			}
			return resolve(cmd, a, c, yes, "Data reset complete")
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "reset without asking")
	return cmd
}

// resolve prompts for c and confirms or declines it on the surface.
func resolve(cmd *cobra.Command, a *app, c *settings.Confirmation, yes bool, done string) error {
	out := cmd.OutOrStdout()
	ok, err := confirm(c.Message, yes)
	if err != nil {
		_ = a.settings.Decline(c)
		return err
	}
	if !ok {
		fmt.Fprintln(out, "Cancelled")
		return a.settings.Decline(c)
	}

	if err := a.settings.Confirm(cmd.Context(), c); err != nil {
		return err
	}
	fmt.Fprintln(out, done)
	return nil
}

func parseWindow(arg string) (int, error) {
	if strings.EqualFold(arg, "all") || strings.EqualFold(arg, "all-time") {
		return settings.AllTime, nil
	}
	years, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid window %q: %w", arg, settings.ErrInvalidWindow)
	}
	if !settings.ValidWindow(years) {
		return 0, settings.ErrInvalidWindow
	}
	return years, nil
}
