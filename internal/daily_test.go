package internal

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/renvik/recap/testutil"
)

func newDigestRig(t *testing.T) (*DigestGenerator, *Store, *fakeSummaryClient) {
	t.Helper()
	db := testutil.CreateInMemoryDB(t)
	t.Cleanup(func() { db.Close() })

	store := NewStore(db)
	settings := NewSettings(store)
	generator := NewDigestGenerator(store, settings)

	client := &fakeSummaryClient{result: &GenerationResult{Content: "remote digest", StatusCode: 200}}
	generator.newClient = func(apiKey string) SummaryClient { return client }
	return generator, store, client
}

func dayTime(t *testing.T, date string, hour int) time.Time {
	t.Helper()
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		t.Fatalf("bad date %q: %v", date, err)
	}
	return day.Add(time.Duration(hour) * time.Hour)
}

func TestDigestGenerator_Generate_NoActivity(t *testing.T) {
	generator, _, client := newDigestRig(t)

	digest, err := generator.Generate(context.Background(), "2026-08-30", nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if digest.Content != NoActivityMessage(DefaultLanguage) {
		t.Errorf("Content = %q, want the no-activity message", digest.Content)
	}
	if digest.SummaryCount != 0 || digest.CaptureCount != 0 {
		t.Errorf("counts = %d/%d, want 0/0", digest.SummaryCount, digest.CaptureCount)
	}
	if client.callCount() != 0 {
		t.Error("remote client called for an empty day")
	}
}

func TestDigestGenerator_Generate_FallbackWithoutAPIKey(t *testing.T) {
	generator, store, client := newDigestRig(t)

	date := "2026-08-30"
	db := store.db
	testutil.InsertSummary(t, db, dayTime(t, date, 9), dayTime(t, date, 9).Add(45*time.Second), "morning work", 45)
	testutil.InsertSummary(t, db, dayTime(t, date, 14), dayTime(t, date, 14).Add(45*time.Second), "afternoon work", 45)
	testutil.InsertCapture(t, db, dayTime(t, date, 9), "/r/a.jpg")
	testutil.InsertCapture(t, db, dayTime(t, date, 14), "/r/b.jpg")

	digest, err := generator.Generate(context.Background(), date, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	// No credential: digest is the concatenation of the source summaries.
	if digest.Content != "morning work\n\nafternoon work" {
		t.Errorf("Content = %q", digest.Content)
	}
	if digest.SummaryCount != 2 || digest.CaptureCount != 2 {
		t.Errorf("counts = %d/%d, want 2/2", digest.SummaryCount, digest.CaptureCount)
	}
	if digest.TotalDurationSeconds != 90 {
		t.Errorf("TotalDurationSeconds = %d, want 90", digest.TotalDurationSeconds)
	}
	if client.callCount() != 0 {
		t.Error("remote client called without a credential")
	}
}

func TestDigestGenerator_Generate_Remote(t *testing.T) {
	generator, store, client := newDigestRig(t)
	if err := NewSettings(store).SetAPIKey("k"); err != nil {
		t.Fatalf("SetAPIKey() error = %v", err)
	}

	date := "2026-08-30"
	db := store.db
	testutil.InsertSummary(t, db, dayTime(t, date, 9), dayTime(t, date, 10), "worked", 3600)

	digest, err := generator.Generate(context.Background(), date, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if digest.Content != "remote digest" {
		t.Errorf("Content = %q, want remote result", digest.Content)
	}
	if client.callCount() != 1 {
		t.Errorf("remote client called %d times, want 1", client.callCount())
	}
	// The combined summaries ride inside the digest prompt.
	if client.lastPrompt == "" || !strings.Contains(client.lastPrompt, "worked") {
		t.Errorf("prompt = %q, want it to embed the summaries", client.lastPrompt)
	}
}

func TestDigestGenerator_Generate_RemoteFailureFallsBack(t *testing.T) {
	generator, store, client := newDigestRig(t)
	if err := NewSettings(store).SetAPIKey("k"); err != nil {
		t.Fatalf("SetAPIKey() error = %v", err)
	}
	client.err = &GenerationError{StatusCode: 503, Body: "overloaded"}

	date := "2026-08-30"
	db := store.db
	testutil.InsertSummary(t, db, dayTime(t, date, 9), dayTime(t, date, 10), "worked", 3600)

	digest, err := generator.Generate(context.Background(), date, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if digest.Content != "worked" {
		t.Errorf("Content = %q, want raw summary fallback", digest.Content)
	}
}

func TestDigestGenerator_Generate_Regenerate(t *testing.T) {
	generator, store, _ := newDigestRig(t)

	date := "2026-08-30"
	first, err := generator.Generate(context.Background(), date, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	db := store.db
	testutil.InsertSummary(t, db, dayTime(t, date, 9), dayTime(t, date, 10), "late arrival", 3600)

	second, err := generator.Generate(context.Background(), date, nil)
	if err != nil {
		t.Fatalf("second Generate() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("regeneration created a new row: %d then %d", first.ID, second.ID)
	}
	if second.SummaryCount != 1 {
		t.Errorf("SummaryCount = %d, want 1 after regeneration", second.SummaryCount)
	}
}

func TestDigestGenerator_Generate_InvalidDate(t *testing.T) {
	generator, _, _ := newDigestRig(t)
	if _, err := generator.Generate(context.Background(), "30/08/2026", nil); err == nil {
		t.Error("Generate() with malformed date should fail")
	}
}

func TestDigestGenerator_Generate_Notifies(t *testing.T) {
	generator, _, _ := newDigestRig(t)

	var kinds []ChangeKind
	notifier := NotifierFunc(func(kind ChangeKind) { kinds = append(kinds, kind) })

	if _, err := generator.Generate(context.Background(), "2026-08-30", notifier); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(kinds) != 1 || kinds[0] != ChangeDaily {
		t.Errorf("notifications = %v, want [daily]", kinds)
	}
}

func TestDigestGenerator_DailyStats(t *testing.T) {
	generator, store, _ := newDigestRig(t)
	db := store.db

	today := time.Now().Format("2006-01-02")
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	// Yesterday has only raw records; today has a stored digest.
	testutil.InsertCapture(t, db, time.Now().AddDate(0, 0, -1), "/r/y.jpg")
	if _, err := store.UpsertDailySummary(&DailySummary{
		Date: today, Content: "digest", CaptureCount: 10, SummaryCount: 2, TotalDurationSeconds: 90,
	}); err != nil {
		t.Fatalf("UpsertDailySummary() error = %v", err)
	}

	stats, err := generator.DailyStats(3)
	if err != nil {
		t.Fatalf("DailyStats() error = %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("got %d days, want 3", len(stats))
	}
	// Oldest first, ending today.
	if stats[2].Date != today {
		t.Errorf("last entry = %s, want today", stats[2].Date)
	}
	if stats[2].CaptureCount != 10 || stats[2].SummaryCount != 2 {
		t.Errorf("today's stats = %+v, want digest counts", stats[2])
	}
	if stats[1].Date != yesterday || stats[1].CaptureCount != 1 {
		t.Errorf("yesterday's stats = %+v, want 1 raw capture", stats[1])
	}
	if stats[0].CaptureCount != 0 || stats[0].SummaryCount != 0 {
		t.Errorf("empty day stats = %+v, want zeros", stats[0])
	}
}
