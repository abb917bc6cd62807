package internal

import (
	"context"
	"sync"
	"time"
)

// Controller owns the session lifecycle: it starts and stops the capture and
// summary loops and exposes status. Start/Stop are serialized behind one
// mutex, so concurrent calls cannot race the active flag.
type Controller struct {
	mu sync.Mutex

	session   *Session
	store     *Store
	settings  *Settings
	assembler *Assembler
	notifier  Notifier

	// newClient builds a fresh summarization client per cycle with the
	// credential valid at that moment; swappable in tests.
	newClient func(apiKey string) SummaryClient

	// captureOnce grabs and persists one frame; swappable in tests, where
	// no display exists.
	captureOnce  func(index uint64) (*CaptureRecord, error)
	captureEvery time.Duration

	cancelCapture context.CancelFunc
}

// NewController wires the session core together. notifier may be nil.
func NewController(session *Session, store *Store, settings *Settings, notifier Notifier) *Controller {
	capturer := NewCapturer(session.StoragePath(), store, notifier)
	return &Controller{
		session:      session,
		store:        store,
		settings:     settings,
		assembler:    NewAssembler(),
		notifier:     notifier,
		newClient:    func(apiKey string) SummaryClient { return NewGeminiClient(apiKey) },
		captureOnce:  capturer.CaptureOnce,
		captureEvery: captureInterval,
	}
}

// Start begins a recording session: it marks the session active and spawns
// the capture and summary loops bound to the shared session state. Returns
// ErrAlreadyRecording when a session is already running.
func (c *Controller) Start(ctx context.Context) (SessionStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Recording() {
		LogWarn("Recording is already in progress")
		return SessionStatus{}, ErrAlreadyRecording
	}

	c.session.setRecording(true)
	LogInfo("Recording started")

	// The capture loop is hard-aborted by Stop via this context; the summary
	// loop only observes the recording flag, so a cycle already underway runs
	// to completion. Capture loss is cheap, a half-finished summary is not.
	captureCtx, cancel := context.WithCancel(ctx)
	c.cancelCapture = cancel
	go c.captureLoop(captureCtx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.summaryLoop(ctx)
	}()
	go func() {
		<-done
		if c.session.Recording() {
			// Degraded until the next Start; deliberately not restarted.
			LogWarn("Summary loop exited unexpectedly")
		}
	}()

	return c.session.Status(), nil
}

// Stop ends the session: it clears the active flag and aborts the capture
// loop immediately, possibly mid-capture. Returns ErrNotRecording when no
// session is running.
func (c *Controller) Stop() (SessionStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.session.Recording() {
		return SessionStatus{}, ErrNotRecording
	}

	c.session.setRecording(false)
	if c.cancelCapture != nil {
		c.cancelCapture()
		c.cancelCapture = nil
	}

	status := c.session.Status()
	LogInfo("Recording stopped after %d captures", status.CaptureCount)
	return status, nil
}

// Status returns a read-only snapshot of the session.
func (c *Controller) Status() SessionStatus {
	return c.session.Status()
}
