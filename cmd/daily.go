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
	dailyDate      string
	dailyStatsDays int
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Generate the digest for one day",
	Long: `Generate (or regenerate) the aggregate digest for a single day and
print it. Defaults to today.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		settings := internal.NewSettings(store)
		generator := internal.NewDigestGenerator(store, settings)

		digest, err := generator.Generate(cmd.Context(), dailyDate, nil)
		if err != nil {
			return fmt.Errorf("failed to generate daily digest: %w", err)
		}

		fmt.Println(summaryHeaderStyle.Render(fmt.Sprintf("Daily digest for %s", digest.Date)))
		fmt.Println(summaryMetaStyle.Render(fmt.Sprintf("%d frames  ·  %d summaries  ·  %s recorded",
			digest.CaptureCount, digest.SummaryCount,
			(time.Duration(digest.TotalDurationSeconds) * time.Second).String())))
		fmt.Println(summaryBodyStyle.Render(digest.Content))
		return nil
	},
}

var dailyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-day activity for recent days",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		settings := internal.NewSettings(store)
		generator := internal.NewDigestGenerator(store, settings)

		stats, err := generator.DailyStats(dailyStatsDays)
		if err != nil {
			return fmt.Errorf("failed to load daily stats: %w", err)
		}

		w := tabwriter.NewWriter(lipgloss.DefaultRenderer().Output(), 0, 0, 3, ' ', tabwriter.AlignRight)
		_, _ = fmt.Fprintln(w, titleStyle.Render("Date")+"\t"+titleStyle.Render("Frames")+"\t"+titleStyle.Render("Summaries")+"\t"+titleStyle.Render("Recorded")+"\t")
		_, _ = fmt.Fprintln(w, strings.Repeat("─", 60))
		for _, day := range stats {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
				dateStyle.Render(day.Date),
				countStyle.Render(strconv.FormatInt(day.CaptureCount, 10)),
				strconv.FormatInt(day.SummaryCount, 10),
				(time.Duration(day.TotalDurationSeconds)*time.Second).String())
		}
		_ = w.Flush()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dailyCmd)
	dailyCmd.AddCommand(dailyStatsCmd)
	dailyCmd.Flags().StringVar(&dailyDate, "date", "", "Day to digest as YYYY-MM-DD (default today)")
	dailyStatsCmd.Flags().IntVar(&dailyStatsDays, "days", 7, "Number of recent days to show")
}
