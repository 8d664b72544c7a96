package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garrettladley/pulse/internal/xslog"
)

func authCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with WHOOP",
		Long:  "Opens the browser to authorize pulse with WHOOP and stores the token locally.",
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

			if err := a.settings.RequestReauthorization(ctx); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			token, err := a.tokens.Token()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Authentication successful!")
			if profile, err := a.client.User.GetProfile(ctx); err != nil {
				a.logger.WarnContext(ctx, "failed to fetch whoop profile", xslog.Error(err))
			} else {
				fmt.Fprintf(out, "Connected as %s %s <%s>\n", profile.FirstName, profile.LastName, profile.Email)
			}
			fmt.Fprintf(out, "Token expires: %s\n", token.Expiry.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}
