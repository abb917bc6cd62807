package export

import (
	"encoding/json"
	"io"

	"github.com/renvik/recap/internal"
)

// JSONExporter exports summary reports in JSON format (pretty-printed)
type JSONExporter struct{}

// Export writes the report as one indented JSON document
func (e *JSONExporter) Export(report *internal.SummaryReport, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(report)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
