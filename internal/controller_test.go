package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/renvik/recap/testutil"
)

// fakeSummaryClient satisfies SummaryClient without any network traffic.
type fakeSummaryClient struct {
	mu     sync.Mutex
	calls  int
	result *GenerationResult
	err    error

	lastModel  string
	lastPrompt string
	lastMode   ResolutionMode
}

func (f *fakeSummaryClient) SummarizeVideo(ctx context.Context, model, videoPath, prompt string, mode ResolutionMode) (*GenerationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastModel = model
	f.lastPrompt = prompt
	f.lastMode = mode
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeSummaryClient) GenerateText(ctx context.Context, model, prompt string) (*GenerationResult, error) {
	return f.SummarizeVideo(ctx, model, "", prompt, ResolutionLow)
}

func (f *fakeSummaryClient) Endpoint() string { return "https://example.invalid/v1beta/models" }

func (f *fakeSummaryClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// writeFakeEncoder drops a script that accepts any arguments and exits 0,
// standing in for ffmpeg.
func writeFakeEncoder(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-ffmpeg")
	script := "#!/bin/sh\nexit 0\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("Failed to write fake encoder: %v", err)
	}
	return path
}

type testRig struct {
	controller *Controller
	session    *Session
	store      *Store
	settings   *Settings
	client     *fakeSummaryClient
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	db := testutil.CreateInMemoryDB(t)
	t.Cleanup(func() { db.Close() })

	store := NewStore(db)
	settings := NewSettings(store)
	paths := DataPaths{
		BaseDir:       t.TempDir(),
		RecordingsDir: filepath.Join(t.TempDir(), "recordings"),
	}
	session := NewSession(paths, settings)
	controller := NewController(session, store, settings, nil)

	client := &fakeSummaryClient{
		result: &GenerationResult{Content: "did some work", StatusCode: 200, Duration: 100 * time.Millisecond},
	}
	controller.newClient = func(apiKey string) SummaryClient { return client }
	controller.assembler = &Assembler{candidates: []string{writeFakeEncoder(t)}}

	return &testRig{controller: controller, session: session, store: store, settings: settings, client: client}
}

func TestCaptureLoop_ContinuesAfterFailure(t *testing.T) {
	rig := newTestRig(t)
	rig.controller.captureEvery = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	calls := 0
	rig.controller.captureOnce = func(index uint64) (*CaptureRecord, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		switch calls {
		case 1:
			return nil, &CaptureError{Stage: StageDisplay, Err: fmt.Errorf("display asleep")}
		case 2:
			return &CaptureRecord{FilePath: "/r/ok.jpg", Width: 640, Height: 360, FileSize: 1}, nil
		default:
			cancel()
			return nil, &CaptureError{Stage: StageDisplay, Err: fmt.Errorf("display asleep")}
		}
	}

	rig.session.setRecording(true)
	done := make(chan struct{})
	go func() {
		defer close(done)
		rig.controller.captureLoop(ctx)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("capture loop did not exit after cancellation")
	}

	mu.Lock()
	got := calls
	mu.Unlock()
	if got < 3 {
		t.Fatalf("capture attempts = %d, want at least 3", got)
	}
	if count := rig.session.CaptureCount(); count != 1 {
		t.Errorf("CaptureCount = %d, want 1 (only the successful attempt counts)", count)
	}
}

func TestController_StartAndStop(t *testing.T) {
	rig := newTestRig(t)

	status, err := rig.controller.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !status.IsRecording {
		t.Error("Start() did not mark session recording")
	}
	if status.CaptureCount != 0 {
		t.Errorf("CaptureCount = %d at start, want 0", status.CaptureCount)
	}

	status, err = rig.controller.Stop()
	if err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if status.IsRecording {
		t.Error("Stop() did not clear recording flag")
	}
	if rig.controller.Status().IsRecording {
		t.Error("Status() still reports recording after Stop()")
	}
}

func TestController_DoubleStart(t *testing.T) {
	rig := newTestRig(t)

	if _, err := rig.controller.Start(context.Background()); err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	defer rig.controller.Stop()

	if _, err := rig.controller.Start(context.Background()); err != ErrAlreadyRecording {
		t.Errorf("second Start() error = %v, want ErrAlreadyRecording", err)
	}
	// The running session is untouched by the rejected Start.
	if !rig.controller.Status().IsRecording {
		t.Error("session no longer recording after rejected Start()")
	}
}

func TestController_StopWithoutRecording(t *testing.T) {
	rig := newTestRig(t)

	if _, err := rig.controller.Stop(); err != ErrNotRecording {
		t.Errorf("Stop() error = %v, want ErrNotRecording", err)
	}
}

func TestController_StartAfterStop(t *testing.T) {
	rig := newTestRig(t)

	if _, err := rig.controller.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	rig.session.IncrementCaptures()
	if _, err := rig.controller.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	status, err := rig.controller.Start(context.Background())
	if err != nil {
		t.Fatalf("restart error = %v", err)
	}
	defer rig.controller.Stop()
	if status.CaptureCount != 0 {
		t.Errorf("CaptureCount = %d after restart, want 0", status.CaptureCount)
	}
}

func TestController_RunSummaryCycle_Success(t *testing.T) {
	rig := newTestRig(t)
	rig.session.SetAPIKey("k")
	rig.session.SetLanguage("en")
	rig.session.SetResolution(ResolutionDefault)

	// Inserted out of order; the persisted window must still be min..max.
	base := time.Now().Add(-30 * time.Second)
	times := []time.Time{
		base.Add(2 * time.Second),
		base,
		base.Add(4 * time.Second),
		base.Add(1 * time.Second),
		base.Add(3 * time.Second),
	}
	for i, ts := range times {
		if _, err := rig.store.InsertCapture(&CaptureRecord{
			Timestamp: ts,
			FilePath:  filepath.Join("/tmp", "frames", fmt.Sprintf("frame%d.jpg", i)),
			Width:     1920, Height: 1080, FileSize: 1000,
		}); err != nil {
			t.Fatalf("InsertCapture() error = %v", err)
		}
	}

	prompt := int64(4000)
	completion := int64(50)
	total := int64(4050)
	rig.client.result = &GenerationResult{
		Content:          "Browsed documentation and edited code.",
		PromptTokens:     &prompt,
		CompletionTokens: &completion,
		TotalTokens:      &total,
		StatusCode:       200,
		Duration:         2 * time.Second,
	}

	rig.controller.runSummaryCycle(context.Background(), "k", time.Minute)

	if rig.client.callCount() != 1 {
		t.Fatalf("client called %d times, want 1", rig.client.callCount())
	}
	if rig.client.lastMode != ResolutionDefault {
		t.Errorf("resolution = %v, want default", rig.client.lastMode)
	}
	if rig.client.lastPrompt != DefaultPrompt("en") {
		t.Errorf("prompt = %q, want the English default", rig.client.lastPrompt)
	}

	summaries, err := rig.store.SummariesBetween(nil, nil, 0)
	if err != nil {
		t.Fatalf("SummariesBetween() error = %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}
	s := summaries[0]
	if s.Content != "Browsed documentation and edited code." {
		t.Errorf("Content = %q", s.Content)
	}
	if s.CaptureCount != 5 {
		t.Errorf("CaptureCount = %d, want 5", s.CaptureCount)
	}
	if !s.StartTime.Equal(base) {
		t.Errorf("StartTime = %v, want oldest capture %v", s.StartTime, base)
	}
	if !s.EndTime.Equal(base.Add(4 * time.Second)) {
		t.Errorf("EndTime = %v, want newest capture", s.EndTime)
	}
	if s.EndTime.Before(s.StartTime) {
		t.Error("EndTime before StartTime")
	}

	stats, err := rig.store.APIStatistics(nil, nil)
	if err != nil {
		t.Fatalf("APIStatistics() error = %v", err)
	}
	if stats.TotalRequests != 1 || stats.SuccessfulRequests != 1 {
		t.Errorf("stats = %+v, want one successful request", stats)
	}
	if stats.TotalTokens != 4050 {
		t.Errorf("TotalTokens = %d, want 4050", stats.TotalTokens)
	}
}

func TestController_RunSummaryCycle_NoCaptures(t *testing.T) {
	rig := newTestRig(t)
	rig.session.SetAPIKey("k")

	rig.controller.runSummaryCycle(context.Background(), "k", time.Minute)

	if rig.client.callCount() != 0 {
		t.Errorf("client called %d times with no captures, want 0", rig.client.callCount())
	}
	summaries, _ := rig.store.SummariesBetween(nil, nil, 0)
	if len(summaries) != 0 {
		t.Errorf("got %d summaries, want 0", len(summaries))
	}
}

func TestController_RunSummaryCycle_AssemblyFailure(t *testing.T) {
	rig := newTestRig(t)
	rig.session.SetAPIKey("k")
	rig.controller.assembler = &Assembler{candidates: []string{"/nonexistent/ffmpeg"}}

	testDBCapture(t, rig, time.Now().Add(-5*time.Second))

	rig.controller.runSummaryCycle(context.Background(), "k", time.Minute)

	if rig.client.callCount() != 0 {
		t.Errorf("client called despite assembly failure")
	}
	// Assembly failures are local, so no telemetry row is written.
	stats, _ := rig.store.APIStatistics(nil, nil)
	if stats.TotalRequests != 0 {
		t.Errorf("TotalRequests = %d after assembly failure, want 0", stats.TotalRequests)
	}
	summaries, _ := rig.store.SummariesBetween(nil, nil, 0)
	if len(summaries) != 0 {
		t.Errorf("got %d summaries after assembly failure, want 0", len(summaries))
	}
}

func TestController_RunSummaryCycle_RemoteFailure(t *testing.T) {
	rig := newTestRig(t)
	rig.session.SetAPIKey("k")
	rig.client.err = &GenerationError{StatusCode: http.StatusInternalServerError, Body: "boom"}

	testDBCapture(t, rig, time.Now().Add(-5*time.Second))

	rig.controller.runSummaryCycle(context.Background(), "k", time.Minute)

	summaries, _ := rig.store.SummariesBetween(nil, nil, 0)
	if len(summaries) != 0 {
		t.Errorf("got %d summaries after remote failure, want 0", len(summaries))
	}

	stats, err := rig.store.APIStatistics(nil, nil)
	if err != nil {
		t.Fatalf("APIStatistics() error = %v", err)
	}
	if stats.TotalRequests != 1 || stats.FailedRequests != 1 {
		t.Fatalf("stats = %+v, want one failed request", stats)
	}
	if stats.TotalTokens != 0 {
		t.Errorf("TotalTokens = %d for failed call, want 0", stats.TotalTokens)
	}
}

func testDBCapture(t *testing.T, rig *testRig, ts time.Time) {
	t.Helper()
	if _, err := rig.store.InsertCapture(&CaptureRecord{
		Timestamp: ts,
		FilePath:  "/tmp/frame.jpg",
		Width:     1920, Height: 1080, FileSize: 1000,
	}); err != nil {
		t.Fatalf("InsertCapture() error = %v", err)
	}
}

func TestSummaryLoop_SkipsWithoutAPIKeyAndExitsOnStop(t *testing.T) {
	if testing.Short() {
		t.Skip("timing-dependent")
	}
	rig := newTestRig(t)

	// 1s is below the settable minimum but getters do not re-validate, which
	// keeps this test fast.
	if err := rig.store.SetSetting("summary_interval_seconds", "1"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}
	rig.session.RefreshConfig(rig.settings)
	rig.session.setRecording(true)
	testDBCapture(t, rig, time.Now().Add(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		rig.controller.summaryLoop(ctx)
	}()

	// Two ticks with no credential: the loop keeps running and makes no
	// remote calls.
	time.Sleep(2500 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("summary loop exited while recording")
	default:
	}
	if rig.client.callCount() != 0 {
		t.Errorf("client called %d times without a credential", rig.client.callCount())
	}

	// Clearing the flag makes the next tick exit the loop.
	rig.session.setRecording(false)
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("summary loop did not exit after recording stopped")
	}
}

func TestSummaryLoop_IntervalChangeSkipsThatTick(t *testing.T) {
	if testing.Short() {
		t.Skip("timing-dependent")
	}
	rig := newTestRig(t)
	rig.session.SetAPIKey("k")
	if err := rig.settings.SetAPIKey("k"); err != nil {
		t.Fatalf("SetAPIKey() error = %v", err)
	}
	if err := rig.store.SetSetting("summary_interval_seconds", "1"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}
	rig.session.RefreshConfig(rig.settings)
	rig.session.setRecording(true)
	// A future timestamp keeps the capture inside every trailing window.
	testDBCapture(t, rig, time.Now().Add(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		rig.controller.summaryLoop(ctx)
	}()

	// Wait for the first cycle.
	deadline := time.Now().Add(3 * time.Second)
	for rig.client.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if rig.client.callCount() == 0 {
		t.Fatal("no summary cycle ran")
	}

	// Widen the interval: the tick that notices only rebuilds the timer, so
	// no further cycles run for a long time.
	if err := rig.store.SetSetting("summary_interval_seconds", "3600"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}
	calls := rig.client.callCount()
	time.Sleep(2500 * time.Millisecond)
	if got := rig.client.callCount(); got > calls+1 {
		t.Errorf("summary cycles kept running after interval change: %d -> %d", calls, got)
	}

	rig.session.setRecording(false)
	cancel()
	<-done
}
