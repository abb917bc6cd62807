package internal

import (
	"sync"
	"time"
)

// Session is the explicit shared-state object constructed once per process
// and handed to both loops at spawn time. Fields change independently and
// infrequently relative to the 1 Hz capture tick, so each accessor takes the
// lock on its own.
type Session struct {
	mu sync.RWMutex

	recording    bool
	captureCount uint64
	storagePath  string

	apiKey          string
	model           string
	summaryInterval time.Duration
	resolution      ResolutionMode
	language        string
}

// NewSession builds the session state from persisted settings. Settings load
// errors fall back to defaults; they never prevent a session from existing.
func NewSession(paths DataPaths, settings *Settings) *Session {
	s := &Session{
		storagePath:     paths.RecordingsDir,
		model:           DefaultModel,
		summaryInterval: DefaultSummaryInterval,
		resolution:      ResolutionLow,
		language:        DefaultLanguage,
	}
	s.RefreshConfig(settings)
	return s
}

// RefreshConfig re-reads the hot-reloadable configuration from the settings
// provider. Called at construction and at the top of every summary tick so
// changes made by another process take effect without a restart.
func (s *Session) RefreshConfig(settings *Settings) {
	if settings == nil {
		return
	}
	if key, err := settings.APIKey(); err == nil {
		s.SetAPIKey(key)
	}
	if model, err := settings.Model(); err == nil {
		s.SetModel(model)
	}
	if interval, err := settings.SummaryInterval(); err == nil {
		s.SetSummaryInterval(interval)
	}
	if mode, err := settings.Resolution(); err == nil {
		s.SetResolution(mode)
	}
	if lang, err := settings.Language(); err == nil {
		s.SetLanguage(lang)
	}
}

// Recording reports whether a session is active. Both loops treat this as
// advisory: checked, never blocking.
func (s *Session) Recording() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recording
}

func (s *Session) setRecording(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recording = active
	if active {
		s.captureCount = 0
	}
}

// IncrementCaptures bumps the shared capture counter and returns the new
// value.
func (s *Session) IncrementCaptures() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captureCount++
	return s.captureCount
}

// CaptureCount returns the number of captures in the current session.
func (s *Session) CaptureCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.captureCount
}

// StoragePath returns the recordings directory.
func (s *Session) StoragePath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.storagePath
}

// APIKey returns the current credential, or "" when unset.
func (s *Session) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiKey
}

// SetAPIKey updates the credential.
func (s *Session) SetAPIKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = key
}

// Model returns the configured model identifier.
func (s *Session) Model() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// SetModel updates the model identifier.
func (s *Session) SetModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
}

// SummaryInterval returns the configured summarization interval.
func (s *Session) SummaryInterval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summaryInterval
}

// SetSummaryInterval updates the summarization interval.
func (s *Session) SetSummaryInterval(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaryInterval = interval
}

// Resolution returns the configured resolution mode.
func (s *Session) Resolution() ResolutionMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolution
}

// SetResolution updates the resolution mode.
func (s *Session) SetResolution(mode ResolutionMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolution = mode
}

// Language returns the configured summary language.
func (s *Session) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// SetLanguage updates the summary language.
func (s *Session) SetLanguage(lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = lang
}

// Status returns a read-only snapshot with no side effects.
func (s *Session) Status() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionStatus{
		IsRecording:  s.recording,
		CaptureCount: s.captureCount,
		StoragePath:  s.storagePath,
	}
}
