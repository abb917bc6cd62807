package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/renvik/recap/internal"
	"github.com/spf13/cobra"
)

var configLang string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and change recap settings",
	Long: `Read and change recap settings.

Available keys:
  api-key           Gemini API key
  model             Model used for summarization
  summary-interval  Seconds between summaries (10-3600)
  resolution        Video resolution sent to the model (low, default)
  language          Summary language (en, zh)
  prompt            Analysis prompt for the selected language`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the current value of a setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		settings := internal.NewSettings(store)

		value, err := configValue(settings, args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		settings := internal.NewSettings(store)

		if err := applySetting(settings, args[0], args[1]); err != nil {
			return err
		}
		fmt.Println(countStyle.Render(fmt.Sprintf("Set %s", args[0])))
		return nil
	},
}

var configResetPromptCmd = &cobra.Command{
	Use:   "reset-prompt",
	Short: "Restore the default analysis prompt for a language",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		settings := internal.NewSettings(store)

		lang, err := promptLanguage(settings)
		if err != nil {
			return err
		}
		if err := settings.ResetPrompt(lang); err != nil {
			return fmt.Errorf("failed to reset prompt: %w", err)
		}
		fmt.Println(countStyle.Render(fmt.Sprintf("Prompt for %q restored to default", lang)))
		return nil
	},
}

func configValue(settings *internal.Settings, key string) (string, error) {
	switch key {
	case "api-key":
		apiKey, err := settings.APIKey()
		if err != nil {
			return "", err
		}
		return maskKey(apiKey), nil
	case "model":
		return settings.Model()
	case "summary-interval":
		interval, err := settings.SummaryInterval()
		if err != nil {
			return "", err
		}
		return strconv.Itoa(int(interval / time.Second)), nil
	case "resolution":
		mode, err := settings.Resolution()
		if err != nil {
			return "", err
		}
		return mode.String(), nil
	case "language":
		return settings.Language()
	case "prompt":
		lang, err := promptLanguage(settings)
		if err != nil {
			return "", err
		}
		return settings.Prompt(lang)
	default:
		return "", fmt.Errorf("unknown setting %q", key)
	}
}

func applySetting(settings *internal.Settings, key, value string) error {
	switch key {
	case "api-key":
		return settings.SetAPIKey(value)
	case "model":
		return settings.SetModel(value)
	case "summary-interval":
		seconds, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("summary-interval must be a number of seconds: %w", err)
		}
		return settings.SetSummaryInterval(time.Duration(seconds) * time.Second)
	case "resolution":
		return settings.SetResolution(value)
	case "language":
		return settings.SetLanguage(value)
	case "prompt":
		lang, err := promptLanguage(settings)
		if err != nil {
			return err
		}
		return settings.SetPrompt(lang, value)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
}

// promptLanguage picks the language the prompt key operates on: the --lang
// flag when given, otherwise the configured summary language.
func promptLanguage(settings *internal.Settings) (string, error) {
	if configLang != "" {
		return configLang, nil
	}
	return settings.Language()
}

// maskKey hides all but the tail of a credential for display.
func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configResetPromptCmd)
	configCmd.PersistentFlags().StringVar(&configLang, "lang", "", "Language for the prompt key (defaults to the configured language)")
}
