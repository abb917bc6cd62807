package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/renvik/recap/internal"
)

func resetExportFlags() {
	exportFormat = "json"
	exportOutput = ""
	exportStart = ""
	exportEnd = ""
	exportDays = 0
}

func TestExportCommand_InvalidFormat(t *testing.T) {
	defer resetExportFlags()
	if err := execute(t, "export", "--format", "xml", "--storage", t.TempDir()); err == nil {
		t.Error("export with unsupported format should fail")
	}
}

func TestExportCommand_WritesFile(t *testing.T) {
	defer resetExportFlags()
	storage := t.TempDir()
	out := filepath.Join(t.TempDir(), "report.json")

	if err := execute(t, "export", "--format", "json", "--out", out, "--storage", storage); err != nil {
		t.Fatalf("export error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	var report internal.SummaryReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(report.Summaries) != 0 {
		t.Errorf("fresh database exported %d summaries", len(report.Summaries))
	}
}

func TestExportWindow(t *testing.T) {
	defer resetExportFlags()

	resetExportFlags()
	start, end, err := exportWindow()
	if err != nil {
		t.Fatalf("exportWindow() error = %v", err)
	}
	if start != nil || end != nil {
		t.Error("no flags should mean an open window")
	}

	resetExportFlags()
	exportDays = 7
	start, end, err = exportWindow()
	if err != nil {
		t.Fatalf("exportWindow() error = %v", err)
	}
	if start == nil || end != nil {
		t.Error("--days should set only the lower bound")
	}

	resetExportFlags()
	exportStart = "2026-08-01"
	exportEnd = "2026-08-31"
	exportDays = 7
	start, end, err = exportWindow()
	if err != nil {
		t.Fatalf("exportWindow() error = %v", err)
	}
	if start == nil || end == nil {
		t.Fatal("explicit bounds not applied")
	}
	// Explicit bounds win over --days.
	wantStart, _ := time.ParseInLocation("2006-01-02", "2026-08-01", time.Local)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}

	resetExportFlags()
	exportStart = "August 1st"
	if _, _, err := exportWindow(); err == nil {
		t.Error("malformed --start should fail")
	}
}

func TestParseTimeFlag(t *testing.T) {
	if _, err := parseTimeFlag("2026-08-31"); err != nil {
		t.Errorf("date-only value rejected: %v", err)
	}
	if _, err := parseTimeFlag("2026-08-31T10:00:00Z"); err != nil {
		t.Errorf("RFC3339 value rejected: %v", err)
	}
	if _, err := parseTimeFlag("yesterday"); err == nil {
		t.Error("malformed value accepted")
	}
}
