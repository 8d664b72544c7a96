package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

var errNotConfirmed = errors.New("not confirmed: rerun with --yes to skip the prompt")

func isInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// confirm asks the user to approve a destructive action. Without a terminal
// only --yes approves it.
func confirm(message string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	if !isInteractive() {
		return false, errNotConfirmed
	}

	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(message).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithShowHelp(false).Run()
	if err != nil {
		return false, fmt.Errorf("prompt: %w", err)
	}
	return ok, nil
}
