package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/renvik/recap/internal"
	"github.com/spf13/cobra"
)

var (
	listLimit int
	listDays  int
)

var (
	// Styles shared by the table-style commands.
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent summaries",
	Long:  `List recently generated activity summaries, newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		var start *time.Time
		if listDays > 0 {
			since := time.Now().AddDate(0, 0, -listDays)
			start = &since
		}

		summaries, err := store.SummariesBetween(start, nil, listLimit)
		if err != nil {
			return fmt.Errorf("failed to load summaries: %w", err)
		}

		displaySummaries(summaries)
		return nil
	},
}

func displaySummaries(summaries []internal.SummaryRecord) {
	if len(summaries) == 0 {
		fmt.Println(headerStyle.Render("No summaries found"))
		return
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("Found %d summar%s", len(summaries), plural(len(summaries), "y", "ies"))))
	fmt.Println()

	w := tabwriter.NewWriter(lipgloss.DefaultRenderer().Output(), 0, 0, 3, ' ', tabwriter.AlignRight)

	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Window")+"\t"+titleStyle.Render("Frames")+"\t"+titleStyle.Render("Preview")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 100))

	for _, s := range summaries {
		id := idStyle.Render(strconv.FormatInt(s.ID, 10))
		window := dateStyle.Render(formatWindow(s.StartTime, s.EndTime))
		frames := countStyle.Render(strconv.Itoa(s.CaptureCount))

		preview := strings.Join(strings.Fields(s.Content), " ")
		if len(preview) > 50 {
			preview = preview[:47] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", id, window, frames, preview)
	}

	_ = w.Flush()
	fmt.Println()
	fmt.Println(idStyle.Render("Tip: use `recap show <id>` to read a full summary"))
}

// formatWindow renders a summary's time span compactly, eliding the date when
// both ends fall on the same day.
func formatWindow(start, end time.Time) string {
	if start.Format("2006-01-02") == end.Format("2006-01-02") {
		return fmt.Sprintf("%s %s-%s", start.Format("2006-01-02"), start.Format("15:04"), end.Format("15:04"))
	}
	return fmt.Sprintf("%s - %s", start.Format("2006-01-02 15:04"), end.Format("2006-01-02 15:04"))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Maximum number of summaries to show")
	listCmd.Flags().IntVar(&listDays, "days", 0, "Only show summaries from the last N days (0 = all)")
}
