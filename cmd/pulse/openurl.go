package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func openURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open-url <url>",
		Short: "Handle a URL opened by the operating system",
		Long:  "Completes an authorization from a pulse:// callback URL. Registered as the handler for the custom scheme.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			handled, err := a.receiver.Handle(ctx, args[0])
			if err != nil {
				return err
			}
			if !handled {
				fmt.Fprintf(cmd.OutOrStdout(), "Ignored %s\n", args[0])
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Authorization complete")
			return nil
		},
	}
}
