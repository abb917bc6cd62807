package internal

import (
	"fmt"
	"time"
)

// CaptureRecord describes one screenshot persisted to storage.
type CaptureRecord struct {
	ID        int64     `json:"id" yaml:"id"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	FilePath  string    `json:"file_path" yaml:"file_path"`
	Width     int       `json:"width" yaml:"width"`
	Height    int       `json:"height" yaml:"height"`
	FileSize  int64     `json:"file_size" yaml:"file_size"`
}

// SummaryRecord is one AI-generated summary covering a span of captures.
// StartTime and EndTime are the min/max timestamps of the captures included,
// so StartTime <= EndTime always holds.
type SummaryRecord struct {
	ID           int64     `json:"id" yaml:"id"`
	StartTime    time.Time `json:"start_time" yaml:"start_time"`
	EndTime      time.Time `json:"end_time" yaml:"end_time"`
	Content      string    `json:"content" yaml:"content"`
	CaptureCount int       `json:"capture_count" yaml:"capture_count"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

// APIRequestRecord is the durable audit trail of one remote summarization
// attempt, success or failure.
type APIRequestRecord struct {
	ID               int64     `json:"id" yaml:"id"`
	Timestamp        time.Time `json:"timestamp" yaml:"timestamp"`
	Model            string    `json:"model" yaml:"model"`
	Endpoint         string    `json:"endpoint" yaml:"endpoint"`
	PromptTokens     *int64    `json:"prompt_tokens,omitempty" yaml:"prompt_tokens,omitempty"`
	CompletionTokens *int64    `json:"completion_tokens,omitempty" yaml:"completion_tokens,omitempty"`
	TotalTokens      *int64    `json:"total_tokens,omitempty" yaml:"total_tokens,omitempty"`
	StatusCode       int       `json:"status_code" yaml:"status_code"`
	Success          bool      `json:"success" yaml:"success"`
	ErrorMessage     string    `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	DurationMS       int64     `json:"duration_ms" yaml:"duration_ms"`
}

// DailySummary is the aggregate digest for one calendar day.
type DailySummary struct {
	ID                   int64     `json:"id" yaml:"id"`
	Date                 string    `json:"date" yaml:"date"` // YYYY-MM-DD
	Content              string    `json:"content" yaml:"content"`
	CaptureCount         int       `json:"capture_count" yaml:"capture_count"`
	SummaryCount         int       `json:"summary_count" yaml:"summary_count"`
	TotalDurationSeconds int64     `json:"total_duration_seconds" yaml:"total_duration_seconds"`
	CreatedAt            time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" yaml:"updated_at"`
}

// APIStatistics aggregates the api_requests table over a time range.
type APIStatistics struct {
	TotalRequests         int64    `json:"total_requests" yaml:"total_requests"`
	SuccessfulRequests    int64    `json:"successful_requests" yaml:"successful_requests"`
	FailedRequests        int64    `json:"failed_requests" yaml:"failed_requests"`
	TotalPromptTokens     int64    `json:"total_prompt_tokens" yaml:"total_prompt_tokens"`
	TotalCompletionTokens int64    `json:"total_completion_tokens" yaml:"total_completion_tokens"`
	TotalTokens           int64    `json:"total_tokens" yaml:"total_tokens"`
	AvgDurationMS         *float64 `json:"avg_duration_ms,omitempty" yaml:"avg_duration_ms,omitempty"`
}

// SessionStatus is a read-only snapshot of the recording session.
type SessionStatus struct {
	IsRecording  bool   `json:"is_recording" yaml:"is_recording"`
	CaptureCount uint64 `json:"capture_count" yaml:"capture_count"`
	StoragePath  string `json:"storage_path" yaml:"storage_path"`
}

// SummaryReport bundles summaries and call statistics for export.
type SummaryReport struct {
	GeneratedAt time.Time       `json:"generated_at" yaml:"generated_at"`
	StartTime   *time.Time      `json:"start_time,omitempty" yaml:"start_time,omitempty"`
	EndTime     *time.Time      `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	Summaries   []SummaryRecord `json:"summaries" yaml:"summaries"`
	Stats       APIStatistics   `json:"stats" yaml:"stats"`
}

// FileState is the processing state of a file on the remote provider.
type FileState int

const (
	FileStateUnknown FileState = iota
	FileStateProcessing
	FileStateActive
	FileStateFailed
)

// ParseFileState maps the provider's wire strings onto FileState. Empty and
// unspecified states count as still processing; anything unrecognized is
// Unknown and callers keep waiting.
func ParseFileState(s string) FileState {
	switch s {
	case "ACTIVE":
		return FileStateActive
	case "FAILED":
		return FileStateFailed
	case "PROCESSING", "STATE_UNSPECIFIED", "":
		return FileStateProcessing
	default:
		return FileStateUnknown
	}
}

func (s FileState) String() string {
	switch s {
	case FileStateProcessing:
		return "PROCESSING"
	case FileStateActive:
		return "ACTIVE"
	case FileStateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// RemoteFile is the transient handle for an uploaded artifact. It is created
// by upload, mutated only by polling, and never persisted.
type RemoteFile struct {
	Name     string
	URI      string
	MIMEType string
	State    FileState
}

// ResolutionMode is the token-cost/fidelity trade-off passed to the remote
// summarization request.
type ResolutionMode int

const (
	ResolutionLow ResolutionMode = iota
	ResolutionDefault
)

// ParseResolutionMode validates a stored resolution setting.
func ParseResolutionMode(s string) (ResolutionMode, error) {
	switch s {
	case "low":
		return ResolutionLow, nil
	case "default":
		return ResolutionDefault, nil
	default:
		return ResolutionLow, fmt.Errorf("invalid resolution mode: %q (expected low or default)", s)
	}
}

func (m ResolutionMode) String() string {
	if m == ResolutionDefault {
		return "default"
	}
	return "low"
}

// MediaResolutionLevel returns the provider's enum value for this mode.
func (m ResolutionMode) MediaResolutionLevel() string {
	if m == ResolutionDefault {
		return "MEDIA_RESOLUTION_DEFAULT"
	}
	return "MEDIA_RESOLUTION_LOW"
}
