package internal

import (
	"context"
	"path/filepath"
	"sort"
	"time"
)

const videoFPS = 1

// summaryLoop periodically condenses the trailing window of captures into a
// video and asks the remote model to summarize it. It exits by observing the
// cleared recording flag; it is never force-aborted, so a cycle already past
// the active check runs to completion even after Stop.
func (c *Controller) summaryLoop(ctx context.Context) {
	interval := c.session.SummaryInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	LogInfo("Summary loop started with %s interval", interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !c.session.Recording() {
			LogDebug("Recording stopped, summary loop exiting")
			return
		}

		// Pick up configuration changed by another process since last tick.
		c.session.RefreshConfig(c.settings)

		// An interval change rebuilds the timer; the tick that detects the
		// change performs no summarization.
		if newInterval := c.session.SummaryInterval(); newInterval != interval {
			LogInfo("Summary interval changed from %s to %s", interval, newInterval)
			interval = newInterval
			ticker.Reset(interval)
			continue
		}

		apiKey := c.session.APIKey()
		if apiKey == "" {
			LogWarn("API key not configured, skipping summary cycle")
			continue
		}

		c.runSummaryCycle(ctx, apiKey, interval)
	}
}

// runSummaryCycle executes one SelectWindow -> Assemble -> Summarize ->
// Persist pass. Errors never escape: they are logged, and remote-phase
// failures additionally leave a telemetry record.
func (c *Controller) runSummaryCycle(ctx context.Context, apiKey string, window time.Duration) {
	since := time.Now().Add(-window)
	captures, err := c.store.CapturesBetween(&since, nil, 0)
	if err != nil {
		LogError("Failed to query captures: %v", err)
		return
	}
	if len(captures) == 0 {
		LogWarn("No captures in the last %s, skipping summary", window)
		return
	}

	// Storage returns newest first; the video wants strictly ascending
	// timestamps regardless of query order.
	sort.Slice(captures, func(i, j int) bool {
		return captures[i].Timestamp.Before(captures[j].Timestamp)
	})

	imagePaths := make([]string, len(captures))
	for i, capture := range captures {
		imagePaths[i] = capture.FilePath
	}

	videoPath := filepath.Join(c.session.StoragePath(), "videos",
		"summary_"+time.Now().Format("20060102_150405")+".mp4")

	LogInfo("Assembling %d captures into %s", len(captures), videoPath)
	if err := c.assembler.Assemble(ctx, imagePaths, videoPath, videoFPS); err != nil {
		// Assembly failures abort the cycle but are not remote calls, so no
		// telemetry row is written.
		LogError("Failed to assemble video: %v", err)
		return
	}

	model := c.session.Model()
	resolution := c.session.Resolution()
	lang := c.session.Language()
	prompt, err := c.settings.Prompt(lang)
	if err != nil {
		LogWarn("Failed to load prompt, using default: %v", err)
		prompt = DefaultPrompt(lang)
	}

	client := c.newClient(apiKey)
	result, err := client.SummarizeVideo(ctx, model, videoPath, prompt, resolution)
	if err != nil {
		LogError("Remote summarization failed: %v", err)
		c.recordFailure(client, model, err)
		return
	}

	c.recordSuccess(client, model, result)
	c.persistSummary(captures, result.Content)
}

func (c *Controller) recordSuccess(client SummaryClient, model string, result *GenerationResult) {
	rec := &APIRequestRecord{
		Model:            model,
		Endpoint:         client.Endpoint(),
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
		TotalTokens:      result.TotalTokens,
		StatusCode:       result.StatusCode,
		Success:          true,
		DurationMS:       result.Duration.Milliseconds(),
	}
	if _, err := c.store.InsertAPIRequest(rec); err != nil {
		LogError("Failed to record api request: %v", err)
		return
	}
	notify(c.notifier, ChangeTelemetry)
}

func (c *Controller) recordFailure(client SummaryClient, model string, cause error) {
	rec := &APIRequestRecord{
		Model:        model,
		Endpoint:     client.Endpoint(),
		StatusCode:   remoteStatusCode(cause),
		Success:      false,
		ErrorMessage: cause.Error(),
	}
	if _, err := c.store.InsertAPIRequest(rec); err != nil {
		LogError("Failed to record api request: %v", err)
		return
	}
	notify(c.notifier, ChangeTelemetry)
}

func (c *Controller) persistSummary(captures []CaptureRecord, content string) {
	// captures are sorted ascending here, so the span is first..last.
	summary := &SummaryRecord{
		StartTime:    captures[0].Timestamp,
		EndTime:      captures[len(captures)-1].Timestamp,
		Content:      content,
		CaptureCount: len(captures),
	}
	id, err := c.store.InsertSummary(summary)
	if err != nil {
		LogError("Failed to save summary: %v", err)
		return
	}
	LogInfo("Summary %d saved covering %s to %s (%d captures)",
		id, summary.StartTime.Format(time.RFC3339), summary.EndTime.Format(time.RFC3339), summary.CaptureCount)
	notify(c.notifier, ChangeSummary)
}
