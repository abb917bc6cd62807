package internal

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Settings keys in the settings table.
const (
	settingAPIKey          = "api_key"
	settingModel           = "model"
	settingSummaryInterval = "summary_interval_seconds"
	settingResolution      = "video_resolution"
	settingLanguage        = "language"
	settingPromptPrefix    = "analysis_prompt_" // + language code
)

// Settings defaults.
const (
	DefaultModel           = "gemini-3-flash-preview"
	DefaultSummaryInterval = 45 * time.Second
	DefaultLanguage        = "zh"

	MinSummaryInterval = 10 * time.Second
	MaxSummaryInterval = 3600 * time.Second
)

// Settings exposes the persisted configuration. Every getter reads through to
// the database so values changed by another process are picked up without a
// restart.
type Settings struct {
	store *Store
}

// NewSettings wraps a store.
func NewSettings(store *Store) *Settings {
	return &Settings{store: store}
}

// APIKey returns the configured credential, or "" when unset.
func (s *Settings) APIKey() (string, error) {
	return s.get(settingAPIKey, "")
}

// SetAPIKey stores the credential.
func (s *Settings) SetAPIKey(key string) error {
	return s.store.SetSetting(settingAPIKey, key)
}

// Model returns the configured model identifier.
func (s *Settings) Model() (string, error) {
	return s.get(settingModel, DefaultModel)
}

// SetModel stores the model identifier.
func (s *Settings) SetModel(model string) error {
	if model == "" {
		return &SettingError{Key: settingModel, Value: model, Err: errors.New("model must not be empty")}
	}
	return s.store.SetSetting(settingModel, model)
}

// SummaryInterval returns the configured summarization interval.
func (s *Settings) SummaryInterval() (time.Duration, error) {
	raw, err := s.get(settingSummaryInterval, "")
	if err != nil || raw == "" {
		return DefaultSummaryInterval, err
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return DefaultSummaryInterval, &SettingError{Key: settingSummaryInterval, Value: raw, Err: err}
	}
	return time.Duration(secs) * time.Second, nil
}

// SetSummaryInterval stores the interval, rejecting values outside 10s-3600s.
func (s *Settings) SetSummaryInterval(interval time.Duration) error {
	if interval < MinSummaryInterval || interval > MaxSummaryInterval {
		return &SettingError{
			Key:   settingSummaryInterval,
			Value: interval.String(),
			Err:   fmt.Errorf("interval must be between %s and %s", MinSummaryInterval, MaxSummaryInterval),
		}
	}
	secs := int64(interval / time.Second)
	return s.store.SetSetting(settingSummaryInterval, strconv.FormatInt(secs, 10))
}

// Resolution returns the configured resolution mode.
func (s *Settings) Resolution() (ResolutionMode, error) {
	raw, err := s.get(settingResolution, "low")
	if err != nil {
		return ResolutionLow, err
	}
	mode, err := ParseResolutionMode(raw)
	if err != nil {
		LogWarn("Invalid stored resolution %q, falling back to low", raw)
		return ResolutionLow, nil
	}
	return mode, nil
}

// SetResolution stores the resolution mode.
func (s *Settings) SetResolution(raw string) error {
	mode, err := ParseResolutionMode(raw)
	if err != nil {
		return &SettingError{Key: settingResolution, Value: raw, Err: err}
	}
	return s.store.SetSetting(settingResolution, mode.String())
}

// Language returns the configured language ("en" or "zh").
func (s *Settings) Language() (string, error) {
	raw, err := s.get(settingLanguage, DefaultLanguage)
	if err != nil {
		return DefaultLanguage, err
	}
	if raw != "en" && raw != "zh" {
		LogWarn("Invalid stored language %q, falling back to %s", raw, DefaultLanguage)
		return DefaultLanguage, nil
	}
	return raw, nil
}

// SetLanguage stores the language.
func (s *Settings) SetLanguage(lang string) error {
	if lang != "en" && lang != "zh" {
		return &SettingError{Key: settingLanguage, Value: lang, Err: errors.New("language must be en or zh")}
	}
	return s.store.SetSetting(settingLanguage, lang)
}

// Prompt returns the analysis prompt for a language, falling back to the
// built-in default.
func (s *Settings) Prompt(lang string) (string, error) {
	return s.get(settingPromptPrefix+lang, DefaultPrompt(lang))
}

// SetPrompt stores a custom analysis prompt for a language.
func (s *Settings) SetPrompt(lang, prompt string) error {
	if lang != "en" && lang != "zh" {
		return &SettingError{Key: settingPromptPrefix + lang, Value: lang, Err: errors.New("language must be en or zh")}
	}
	return s.store.SetSetting(settingPromptPrefix+lang, prompt)
}

// ResetPrompt restores the built-in default prompt for a language.
func (s *Settings) ResetPrompt(lang string) error {
	return s.SetPrompt(lang, DefaultPrompt(lang))
}

func (s *Settings) get(key, fallback string) (string, error) {
	value, err := s.store.GetSetting(key)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("load setting %s: %w", key, err)
	}
	return value, nil
}
