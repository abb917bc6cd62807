package cmd

import (
	"fmt"
	"os"

	"github.com/renvik/recap/internal"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	storagePath string
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "recap",
	Short: "Record your screen and summarize activity with AI",
	Long: `recap continuously captures your screen, condenses the captures into
short video clips, and asks a multimodal model to summarize what you were
doing. Summaries, captures, and API telemetry are stored in a local SQLite
database.

Features:
  • 1 fps screen recording of the primary display
  • Periodic AI activity summaries at a configurable interval
  • Daily digests aggregated from individual summaries
  • Export in multiple formats (JSONL, Markdown, YAML, JSON)
  • Per-call API telemetry with token accounting

Quick Start:
  recap record                 # Record until Ctrl-C
  recap config set api-key …   # Configure the API credential first
  recap list                   # List recent summaries
  recap daily                  # Generate today's digest`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", "Custom data location (directory holding the database and recordings)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// openStore resolves the data paths and opens the database. The caller owns
// the returned store.
func openStore() (internal.DataPaths, *internal.Store, error) {
	paths, err := internal.ResolveDataPaths(storagePath)
	if err != nil {
		return internal.DataPaths{}, nil, err
	}
	db, err := internal.OpenDatabase(paths.DatabasePath)
	if err != nil {
		return internal.DataPaths{}, nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return paths, internal.NewStore(db), nil
}
