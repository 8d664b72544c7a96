package main

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/garrettladley/pulse/internal/tui"
)

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.requireCredentials(); err != nil {
		return err
	}

	model := tui.New(tui.Deps{
		Ctx:          ctx,
		Logger:       a.logger,
		TokenChecker: a.tokens,
		Engine:       a.engine,
		Syncer:       a.sync,
		Settings:     a.settings,
		Events:       a.bus,
	})
	defer model.Close()

	p := tea.NewProgram(&model, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
