package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusDays int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show storage location and activity statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		todayCount, err := store.TodayCaptureCount()
		if err != nil {
			return fmt.Errorf("failed to count captures: %w", err)
		}

		since := time.Now().AddDate(0, 0, -statusDays)
		stats, err := store.APIStatistics(&since, nil)
		if err != nil {
			return fmt.Errorf("failed to load API statistics: %w", err)
		}

		fmt.Println(headerStyle.Render("Storage"))
		fmt.Printf("  Database:   %s\n", dateStyle.Render(paths.DatabasePath))
		fmt.Printf("  Recordings: %s\n", dateStyle.Render(paths.RecordingsDir))
		fmt.Println()

		fmt.Println(headerStyle.Render("Today"))
		fmt.Printf("  Captures: %s\n", countStyle.Render(fmt.Sprintf("%d", todayCount)))
		fmt.Println()

		fmt.Println(headerStyle.Render(fmt.Sprintf("API calls (last %d days)", statusDays)))
		fmt.Printf("  Requests: %d (%d ok, %d failed)\n",
			stats.TotalRequests, stats.SuccessfulRequests, stats.FailedRequests)
		fmt.Printf("  Tokens:   %d (%d prompt, %d completion)\n",
			stats.TotalTokens, stats.TotalPromptTokens, stats.TotalCompletionTokens)
		if stats.AvgDurationMS != nil {
			fmt.Printf("  Avg call: %.0f ms\n", *stats.AvgDurationMS)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().IntVar(&statusDays, "days", 7, "Window for API statistics in days")
}
