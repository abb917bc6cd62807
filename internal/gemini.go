package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	defaultBaseURL   = "https://generativelanguage.googleapis.com/v1beta"
	defaultUploadURL = "https://generativelanguage.googleapis.com/upload/v1beta/files"

	defaultPollInterval = 1 * time.Second
	// Video processing can take a while after upload.
	defaultPollBudget = 120 * time.Second

	videoMIMEType = "video/mp4"
)

// SummaryClient is the remote summarization surface the loops depend on.
// GeminiClient is the production implementation.
type SummaryClient interface {
	SummarizeVideo(ctx context.Context, model, videoPath, prompt string, mode ResolutionMode) (*GenerationResult, error)
	GenerateText(ctx context.Context, model, prompt string) (*GenerationResult, error)
	Endpoint() string
}

// GenerationResult is one successful content generation, including reported
// token usage and call timing for the telemetry trail.
type GenerationResult struct {
	Content          string
	PromptTokens     *int64
	CompletionTokens *int64
	TotalTokens      *int64
	StatusCode       int
	Duration         time.Duration
}

// GeminiClient implements the provider's three-phase file summarization
// protocol: upload, poll until ACTIVE, generate. It holds no scheduling
// state; callers decide when to run a cycle.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	uploadURL  string
	httpClient *http.Client

	pollInterval time.Duration
	pollBudget   time.Duration
	// sleep is swappable so poll behavior is testable without real time.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewGeminiClient creates a client with production defaults. Upload and
// generate calls rely on the transport's own deadline handling; only the poll
// phase carries an explicit budget.
func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		uploadURL:    defaultUploadURL,
		httpClient:   &http.Client{},
		pollInterval: defaultPollInterval,
		pollBudget:   defaultPollBudget,
		sleep:        sleepCtx,
	}
}

// Endpoint identifies the generation endpoint for telemetry records.
func (c *GeminiClient) Endpoint() string {
	return c.baseURL + "/models"
}

// Wire types. The File object may arrive bare or wrapped in {"file": {...}}
// depending on the endpoint.

type wireFile struct {
	Name     string `json:"name"`
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType"`
	State    string `json:"state"`
}

type wireFileEnvelope struct {
	File *wireFile `json:"file"`
}

func (f *wireFile) toRemoteFile() RemoteFile {
	return RemoteFile{
		Name:     f.Name,
		URI:      f.URI,
		MIMEType: f.MIMEType,
		State:    ParseFileState(f.State),
	}
}

type wireFileData struct {
	FileURI  string `json:"fileUri"`
	MIMEType string `json:"mimeType"`
}

type wireMediaResolution struct {
	Level string `json:"level"`
}

type wirePart struct {
	FileData        *wireFileData        `json:"fileData,omitempty"`
	MediaResolution *wireMediaResolution `json:"mediaResolution,omitempty"`
	Text            string               `json:"text,omitempty"`
}

type wireContent struct {
	Parts []wirePart `json:"parts"`
}

type wireGenerateRequest struct {
	Contents []wireContent `json:"contents"`
}

type wireGenerateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     *int64 `json:"promptTokenCount"`
		CandidatesTokenCount *int64 `json:"candidatesTokenCount"`
		TotalTokenCount      *int64 `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// UploadFile sends the artifact as a multipart payload to the file endpoint
// and parses the returned file handle.
func (c *GeminiClient) UploadFile(ctx context.Context, path string) (RemoteFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RemoteFile{}, &UploadError{Err: fmt.Errorf("read file: %w", err)}
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return RemoteFile{}, &UploadError{Err: err}
	}
	if _, err := part.Write(data); err != nil {
		return RemoteFile{}, &UploadError{Err: err}
	}
	if err := writer.Close(); err != nil {
		return RemoteFile{}, &UploadError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL+"?key="+c.apiKey, &body)
	if err != nil {
		return RemoteFile{}, &UploadError{Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	LogInfo("Uploading %s to file endpoint", filepath.Base(path))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return RemoteFile{}, &UploadError{Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return RemoteFile{}, &UploadError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var envelope wireFileEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil || envelope.File == nil {
		return RemoteFile{}, &UploadError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
			Err:        fmt.Errorf("unparsable upload response"),
		}
	}

	file := envelope.File.toRemoteFile()
	LogInfo("File uploaded: %s (state %s)", file.Name, file.State)
	return file, nil
}

// FileStatus fetches the current state of an uploaded file. The response may
// be a bare File object or wrapped in an envelope; both are accepted.
func (c *GeminiClient) FileStatus(ctx context.Context, name string) (RemoteFile, error) {
	// Names may come back as "files/xxx" or bare "xxx".
	id := name
	if len(id) < 6 || id[:6] != "files/" {
		id = "files/" + id
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+id+"?key="+c.apiKey, nil)
	if err != nil {
		return RemoteFile{}, &FileStatusError{Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return RemoteFile{}, &FileStatusError{Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return RemoteFile{}, &FileStatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	if len(respBody) == 0 {
		return RemoteFile{}, &FileStatusError{StatusCode: resp.StatusCode, Err: fmt.Errorf("empty status body for %s", id)}
	}

	var envelope wireFileEnvelope
	if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.File != nil {
		return envelope.File.toRemoteFile(), nil
	}
	var file wireFile
	if err := json.Unmarshal(respBody, &file); err != nil {
		return RemoteFile{}, &FileStatusError{StatusCode: resp.StatusCode, Body: string(respBody), Err: err}
	}
	return file.toRemoteFile(), nil
}

// pollOutcome is the decision for one poll observation.
type pollOutcome int

const (
	pollContinue pollOutcome = iota
	pollReady
	pollFailed
	pollExpired
)

// pollDecision is the pure poll policy: given the elapsed time and the
// reported state, decide whether to keep waiting, succeed, or fail. Unknown
// states count as still processing.
func pollDecision(elapsed, budget time.Duration, state FileState) pollOutcome {
	switch state {
	case FileStateActive:
		return pollReady
	case FileStateFailed:
		return pollFailed
	}
	if elapsed > budget {
		return pollExpired
	}
	return pollContinue
}

// WaitUntilActive polls the file status until it becomes ACTIVE, the provider
// reports FAILED, or the poll budget is exhausted.
func (c *GeminiClient) WaitUntilActive(ctx context.Context, name string) (RemoteFile, error) {
	start := time.Now()
	LogInfo("Waiting for file to become ACTIVE: %s", name)

	for {
		file, err := c.FileStatus(ctx, name)
		if err != nil {
			return RemoteFile{}, err
		}

		elapsed := time.Since(start)
		LogDebug("File %s state %s (elapsed %s)", file.Name, file.State, elapsed)

		switch pollDecision(elapsed, c.pollBudget, file.State) {
		case pollReady:
			LogInfo("File is ACTIVE: %s (took %s)", file.Name, elapsed)
			return file, nil
		case pollFailed:
			return RemoteFile{}, &ProcessingFailedError{Name: file.Name}
		case pollExpired:
			return RemoteFile{}, &PollTimeoutError{Budget: c.pollBudget}
		}

		if file.State == FileStateUnknown {
			LogWarn("Unknown file state for %s, continuing to wait", file.Name)
		}
		if err := c.sleep(ctx, c.pollInterval); err != nil {
			return RemoteFile{}, err
		}
	}
}

// GenerateFromFile requests a summary of an ACTIVE file at the given
// resolution mode.
func (c *GeminiClient) GenerateFromFile(ctx context.Context, model string, file RemoteFile, prompt string, mode ResolutionMode) (*GenerationResult, error) {
	parts := []wirePart{
		{
			FileData:        &wireFileData{FileURI: file.URI, MIMEType: file.MIMEType},
			MediaResolution: &wireMediaResolution{Level: mode.MediaResolutionLevel()},
		},
		{Text: prompt},
	}
	return c.generate(ctx, model, parts)
}

// GenerateText runs a text-only generation with no file reference.
func (c *GeminiClient) GenerateText(ctx context.Context, model, prompt string) (*GenerationResult, error) {
	return c.generate(ctx, model, []wirePart{{Text: prompt}})
}

func (c *GeminiClient) generate(ctx context.Context, model string, parts []wirePart) (*GenerationResult, error) {
	payload, err := json.Marshal(wireGenerateRequest{Contents: []wireContent{{Parts: parts}}})
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &GenerationError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}
	defer resp.Body.Close()
	duration := time.Since(start)

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GenerationError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var wire wireGenerateResponse
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return nil, &GenerationError{StatusCode: resp.StatusCode, Body: string(respBody), Err: err}
	}

	if len(wire.Candidates) == 0 || len(wire.Candidates[0].Content.Parts) == 0 ||
		wire.Candidates[0].Content.Parts[0].Text == "" {
		return nil, ErrEmptyResponse
	}

	result := &GenerationResult{
		Content:    wire.Candidates[0].Content.Parts[0].Text,
		StatusCode: resp.StatusCode,
		Duration:   duration,
	}
	if wire.UsageMetadata != nil {
		result.PromptTokens = wire.UsageMetadata.PromptTokenCount
		result.CompletionTokens = wire.UsageMetadata.CandidatesTokenCount
		result.TotalTokens = wire.UsageMetadata.TotalTokenCount
	}
	return result, nil
}

// SummarizeVideo runs the full three-phase protocol for one video artifact.
func (c *GeminiClient) SummarizeVideo(ctx context.Context, model, videoPath, prompt string, mode ResolutionMode) (*GenerationResult, error) {
	uploaded, err := c.UploadFile(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	active, err := c.WaitUntilActive(ctx, uploaded.Name)
	if err != nil {
		return nil, err
	}

	LogInfo("Generating summary from %s (resolution %s)", active.URI, mode)
	return c.GenerateFromFile(ctx, model, active, prompt, mode)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
