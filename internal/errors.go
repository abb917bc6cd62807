package internal

import (
	"errors"
	"fmt"
	"time"
)

// Controller errors surfaced synchronously to callers of Start/Stop.
var (
	ErrAlreadyRecording = errors.New("recording is already in progress")
	ErrNotRecording     = errors.New("recording is not in progress")
)

// CaptureStage identifies where a single capture attempt failed.
type CaptureStage string

const (
	StageDisplay    CaptureStage = "display"
	StagePermission CaptureStage = "permission"
	StageEncode     CaptureStage = "encode"
	StageWrite      CaptureStage = "write"
)

// CaptureError represents a failed screenshot attempt. Non-fatal: the capture
// loop logs it and continues.
type CaptureError struct {
	Stage CaptureStage
	Err   error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture error [%s]: %v", e.Stage, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// EncoderNotFoundError means no known ffmpeg install path answered a version
// probe.
type EncoderNotFoundError struct {
	Tried []string
}

func (e *EncoderNotFoundError) Error() string {
	return fmt.Sprintf("ffmpeg not found (tried %v); install ffmpeg to enable video assembly", e.Tried)
}

// EncodeError carries the encoder subprocess's diagnostic output on a
// non-zero exit.
type EncodeError struct {
	Stderr string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("ffmpeg failed: %v: %s", e.Err, e.Stderr)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// UploadError represents a failed file upload to the remote provider.
type UploadError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upload error: %v", e.Err)
	}
	return fmt.Sprintf("upload error: status %d: %s", e.StatusCode, e.Body)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// FileStatusError represents a failed status fetch for an uploaded file.
type FileStatusError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *FileStatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("file status error: %v", e.Err)
	}
	return fmt.Sprintf("file status error: status %d: %s", e.StatusCode, e.Body)
}

func (e *FileStatusError) Unwrap() error {
	return e.Err
}

// ProcessingFailedError means the provider reported the uploaded file as
// FAILED; the file will never become usable.
type ProcessingFailedError struct {
	Name string
}

func (e *ProcessingFailedError) Error() string {
	return fmt.Sprintf("remote processing failed for file %s", e.Name)
}

// PollTimeoutError means the file did not become ACTIVE within the budget.
type PollTimeoutError struct {
	Budget time.Duration
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("file did not become ACTIVE within %s", e.Budget)
}

// GenerationError represents a failed content-generation request.
type GenerationError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation error: %v", e.Err)
	}
	return fmt.Sprintf("generation error: status %d: %s", e.StatusCode, e.Body)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ErrEmptyResponse means the generation response carried no candidate text.
var ErrEmptyResponse = errors.New("no text in generation response")

// SettingError represents a rejected settings value.
type SettingError struct {
	Key   string
	Value string
	Err   error
}

func (e *SettingError) Error() string {
	return fmt.Sprintf("setting error [%s=%s]: %v", e.Key, e.Value, e.Err)
}

func (e *SettingError) Unwrap() error {
	return e.Err
}

// remoteStatusCode extracts the HTTP status from a remote-phase error, or 0
// when the failure happened before any response arrived.
func remoteStatusCode(err error) int {
	var ue *UploadError
	if errors.As(err, &ue) {
		return ue.StatusCode
	}
	var fe *FileStatusError
	if errors.As(err, &fe) {
		return fe.StatusCode
	}
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.StatusCode
	}
	return 0
}
