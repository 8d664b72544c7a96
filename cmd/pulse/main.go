package main

import (
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/garrettladley/pulse/internal/version"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:     "pulse",
		Short:   "Daily training readiness from your WHOOP data",
		Version: version.Get(),
		RunE:    runTUI,
	}

	rootCmd.AddCommand(
		authCmd(),
		syncCmd(),
		readinessCmd(),
		classifyCmd(),
		openURLCmd(),
		settingsCmd(),
	)

	if err := fang.Execute(context.Background(), rootCmd, fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM)); err != nil {
		os.Exit(1)
	}
}
