package export

import (
	"io"

	"github.com/renvik/recap/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports summary reports in YAML format
type YAMLExporter struct{}

// Export writes the report as a YAML document
func (e *YAMLExporter) Export(report *internal.SummaryReport, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()

	return enc.Encode(report)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
