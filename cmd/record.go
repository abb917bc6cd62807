package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/renvik/recap/internal"
	"github.com/spf13/cobra"
)

var (
	recordActiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42")).
				Bold(true)

	recordDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Start recording until interrupted",
	Long: `Start a recording session: capture the primary display once per second
and produce an AI activity summary at the configured interval. The session
runs until Ctrl-C.

An API key must be configured (recap config set api-key ...) for summaries to
be generated; without one the recorder still captures screenshots and the
summary cycles are skipped with a warning.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		settings := internal.NewSettings(store)
		session := internal.NewSession(paths, settings)
		controller := internal.NewController(session, store, settings, nil)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		status, err := controller.Start(ctx)
		if err != nil {
			return err
		}

		fmt.Println(recordActiveStyle.Render("● Recording"))
		fmt.Printf("  %s\n", recordDimStyle.Render(status.StoragePath))
		fmt.Println(recordDimStyle.Render("  Press Ctrl-C to stop"))

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		signal.Stop(sigCh)

		final, err := controller.Stop()
		if err != nil {
			return err
		}
		fmt.Printf("\nStopped after %d captures\n", final.CaptureCount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recordCmd)
}
