package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	// Styles for show command
	summaryHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	summaryMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	summaryBodyStyle = lipgloss.NewStyle().
				Padding(0, 2)
)

var showCmd = &cobra.Command{
	Use:   "show <summary-id>",
	Short: "Show a single summary in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid summary id %q: %w", args[0], err)
		}

		_, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		summary, err := store.SummaryByID(id)
		if err != nil {
			return fmt.Errorf("failed to load summary: %w", err)
		}
		if summary == nil {
			return fmt.Errorf("no summary with id %d", id)
		}

		fmt.Println(summaryHeaderStyle.Render(fmt.Sprintf("Summary #%d", summary.ID)))
		fmt.Println(summaryMetaStyle.Render(fmt.Sprintf("%s  ·  %d frames  ·  created %s",
			formatWindow(summary.StartTime, summary.EndTime),
			summary.CaptureCount,
			summary.CreatedAt.Format("2006-01-02 15:04:05"))))
		fmt.Println(summaryBodyStyle.Render(summary.Content))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
