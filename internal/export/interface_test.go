package export

import (
	"testing"
)

func TestNewExporter(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		wantExt string
		wantErr bool
	}{
		{name: "jsonl format", format: "jsonl", wantExt: "jsonl"},
		{name: "markdown format", format: "md", wantExt: "md"},
		{name: "markdown format long", format: "markdown", wantExt: "md"},
		{name: "yaml format", format: "yaml", wantExt: "yaml"},
		{name: "json format", format: "json", wantExt: "json"},
		{name: "unsupported format", format: "xml", wantErr: true},
		{name: "empty format", format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter, err := NewExporter(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewExporter(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if exporter.Extension() != tt.wantExt {
				t.Errorf("Extension() = %q, want %q", exporter.Extension(), tt.wantExt)
			}
		})
	}
}
