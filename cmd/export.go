package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/renvik/recap/internal"
	"github.com/renvik/recap/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
	exportStart  string
	exportEnd    string
	exportDays   int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export summaries to file",
	Long: `Export activity summaries and API statistics to various formats
(jsonl, md, yaml, json).

The time window can be given as --days or as explicit --start/--end bounds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		start, end, err := exportWindow()
		if err != nil {
			return err
		}

		_, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		summaries, err := store.SummariesBetween(start, end, 0)
		if err != nil {
			return fmt.Errorf("failed to load summaries: %w", err)
		}
		stats, err := store.APIStatistics(start, end)
		if err != nil {
			return fmt.Errorf("failed to load API statistics: %w", err)
		}

		report := &internal.SummaryReport{
			GeneratedAt: time.Now(),
			StartTime:   start,
			EndTime:     end,
			Summaries:   summaries,
			Stats:       stats,
		}

		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		var out io.Writer = os.Stdout
		if exportOutput != "" {
			path := exportOutput
			file, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer func() {
				if err := file.Close(); err != nil {
					internal.LogWarn("Failed to close file %s: %v", path, err)
				}
			}()
			out = file
		}

		if err := exporter.Export(report, out); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			fmt.Println(countStyle.Render(fmt.Sprintf("Exported %d summar%s to %s",
				len(summaries), plural(len(summaries), "y", "ies"), exportOutput)))
		}
		return nil
	},
}

// exportWindow resolves the --days and --start/--end flags into time bounds.
// Explicit bounds win over --days.
func exportWindow() (start, end *time.Time, err error) {
	if exportStart != "" {
		t, err := parseTimeFlag(exportStart)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --start: %w", err)
		}
		start = &t
	}
	if exportEnd != "" {
		t, err := parseTimeFlag(exportEnd)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --end: %w", err)
		}
		end = &t
	}
	if start == nil && end == nil && exportDays > 0 {
		since := time.Now().AddDate(0, 0, -exportDays)
		start = &since
	}
	return start, end, nil
}

func parseTimeFlag(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", value, time.Local)
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "Output file (default stdout)")
	exportCmd.Flags().StringVar(&exportStart, "start", "", "Window start (YYYY-MM-DD or RFC3339)")
	exportCmd.Flags().StringVar(&exportEnd, "end", "", "Window end (YYYY-MM-DD or RFC3339)")
	exportCmd.Flags().IntVar(&exportDays, "days", 0, "Export the last N days")
}
