package export

import (
	"encoding/json"
	"io"

	"github.com/renvik/recap/internal"
)

// JSONLExporter exports summaries as one JSON object per line
type JSONLExporter struct{}

// Export writes each summary record on its own line
func (e *JSONLExporter) Export(report *internal.SummaryReport, w io.Writer) error {
	enc := json.NewEncoder(w)
	for i := range report.Summaries {
		if err := enc.Encode(&report.Summaries[i]); err != nil {
			return err
		}
	}
	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
