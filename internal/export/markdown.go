package export

import (
	"fmt"
	"io"
	"time"

	"github.com/renvik/recap/internal"
)

// MarkdownExporter exports summary reports in Markdown format
type MarkdownExporter struct{}

// Export writes the report as a human-readable Markdown document
func (e *MarkdownExporter) Export(report *internal.SummaryReport, w io.Writer) error {
	// Header
	_, _ = fmt.Fprintf(w, "# Activity Summaries\n\n")
	_, _ = fmt.Fprintf(w, "**Generated:** %s  \n", report.GeneratedAt.Format(time.RFC3339))
	if report.StartTime != nil {
		_, _ = fmt.Fprintf(w, "**From:** %s  \n", report.StartTime.Format(time.RFC3339))
	}
	if report.EndTime != nil {
		_, _ = fmt.Fprintf(w, "**To:** %s  \n", report.EndTime.Format(time.RFC3339))
	}
	_, _ = fmt.Fprintf(w, "**Summaries:** %d\n\n", len(report.Summaries))

	if report.Stats.TotalRequests > 0 {
		_, _ = fmt.Fprintf(w, "**API calls:** %d (%d ok, %d failed), %d tokens\n\n",
			report.Stats.TotalRequests, report.Stats.SuccessfulRequests,
			report.Stats.FailedRequests, report.Stats.TotalTokens)
	}

	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, summary := range report.Summaries {
		_, _ = fmt.Fprintf(w, "## %s - %s\n\n",
			summary.StartTime.Format("2006-01-02 15:04:05"),
			summary.EndTime.Format("15:04:05"))
		_, _ = fmt.Fprintf(w, "*%d captures*\n\n", summary.CaptureCount)
		_, _ = fmt.Fprintf(w, "%s\n\n", summary.Content)

		if i < len(report.Summaries)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
