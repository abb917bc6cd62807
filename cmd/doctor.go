package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/kbinani/screenshot"
	"github.com/renvik/recap/internal"
	"github.com/spf13/cobra"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that recap can capture, encode, and summarize",
	Long: `Check the health of recap by verifying:
  • Data directory and database access
  • Screen capture availability
  • Video encoder (ffmpeg) availability
  • Summarization credential

This command is useful for debugging a fresh install or a broken setup.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(sectionStyle.Render("🔍 Recap Health Check"))
		fmt.Println()

		failures := 0

		// Step 1: data directory and database
		fmt.Println(infoStyle.Render("Step 1: Checking storage..."))
		paths, store, err := openStore()
		if err != nil {
			fmt.Println(errorStyle.Render("❌ Failed to open database:"), err)
			failures++
		} else {
			defer store.Close()
			fmt.Println(successStyle.Render("✅ Database accessible"))
			fmt.Printf("   Database:   %s\n", paths.DatabasePath)
			fmt.Printf("   Recordings: %s\n", paths.RecordingsDir)
		}
		fmt.Println()

		// Step 2: displays
		fmt.Println(infoStyle.Render("Step 2: Checking screen capture..."))
		displays := screenshot.NumActiveDisplays()
		if displays == 0 {
			fmt.Println(errorStyle.Render("❌ No active displays found"))
			fmt.Println("   On macOS, grant Screen Recording permission in System Settings.")
			failures++
		} else {
			fmt.Println(successStyle.Render(fmt.Sprintf("✅ Found %d display(s)", displays)))
			bounds := screenshot.GetDisplayBounds(0)
			fmt.Printf("   Primary display: %dx%d\n", bounds.Dx(), bounds.Dy())
		}
		fmt.Println()

		// Step 3: encoder
		fmt.Println(infoStyle.Render("Step 3: Checking video encoder..."))
		encoder, err := internal.NewAssembler().FindEncoder(cmd.Context())
		if err != nil {
			var notFound *internal.EncoderNotFoundError
			if errors.As(err, &notFound) {
				fmt.Println(errorStyle.Render("❌ ffmpeg not found"))
				for _, path := range notFound.Tried {
					fmt.Printf("   tried: %s\n", path)
				}
			} else {
				fmt.Println(errorStyle.Render("❌ Encoder check failed:"), err)
			}
			failures++
		} else {
			fmt.Println(successStyle.Render("✅ Encoder available"))
			fmt.Printf("   %s\n", encoder)
		}
		fmt.Println()

		// Step 4: credential
		fmt.Println(infoStyle.Render("Step 4: Checking summarization credential..."))
		if store != nil {
			settings := internal.NewSettings(store)
			apiKey, err := settings.APIKey()
			switch {
			case err != nil:
				fmt.Println(errorStyle.Render("❌ Failed to read API key:"), err)
				failures++
			case apiKey == "":
				fmt.Println(warningStyle.Render("⚠️  No API key configured"))
				fmt.Println("   Recording works without one, but no summaries will be generated.")
				fmt.Println("   Set one with `recap config set api-key <key>`.")
			default:
				fmt.Println(successStyle.Render("✅ API key configured"))
			}
		} else {
			fmt.Println(warningStyle.Render("⚠️  Skipped (database unavailable)"))
		}
		fmt.Println()

		// Summary
		fmt.Println(sectionStyle.Render("📊 Summary"))
		fmt.Println()
		if failures == 0 {
			fmt.Println(successStyle.Render("✅ Health check passed!"))
			return nil
		}
		fmt.Println(errorStyle.Render(fmt.Sprintf("❌ Health check failed (%d problem(s))", failures)))
		return fmt.Errorf("health check failed")
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
