package internal

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DigestGenerator produces per-day aggregate digests from stored summaries.
// It reuses the text-only generation path; when the remote call fails the
// digest falls back to the raw concatenation of the source summaries rather
// than failing the whole operation.
type DigestGenerator struct {
	store    *Store
	settings *Settings

	newClient func(apiKey string) SummaryClient
}

// NewDigestGenerator wires a digest generator.
func NewDigestGenerator(store *Store, settings *Settings) *DigestGenerator {
	return &DigestGenerator{
		store:     store,
		settings:  settings,
		newClient: func(apiKey string) SummaryClient { return NewGeminiClient(apiKey) },
	}
}

// Generate builds (or rebuilds) the digest for a YYYY-MM-DD date; empty date
// means today. The result is upserted and returned.
func (g *DigestGenerator) Generate(ctx context.Context, date string, notifier Notifier) (*DailySummary, error) {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	dayStart := day
	dayEnd := day.Add(24*time.Hour - time.Second)

	summaries, err := g.store.SummariesBetween(&dayStart, &dayEnd, 0)
	if err != nil {
		return nil, fmt.Errorf("load summaries: %w", err)
	}
	captures, err := g.store.CapturesBetween(&dayStart, &dayEnd, 0)
	if err != nil {
		return nil, fmt.Errorf("load captures: %w", err)
	}

	var totalDuration int64
	for _, s := range summaries {
		totalDuration += int64(s.EndTime.Sub(s.StartTime) / time.Second)
	}

	lang, err := g.settings.Language()
	if err != nil {
		lang = DefaultLanguage
	}

	content := g.digestContent(ctx, lang, summaries)

	rec := &DailySummary{
		Date:                 date,
		Content:              content,
		CaptureCount:         len(captures),
		SummaryCount:         len(summaries),
		TotalDurationSeconds: totalDuration,
	}
	if _, err := g.store.UpsertDailySummary(rec); err != nil {
		return nil, err
	}
	notify(notifier, ChangeDaily)

	saved, err := g.store.DailySummaryByDate(date)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, fmt.Errorf("daily summary for %s missing after upsert", date)
	}
	return saved, nil
}

func (g *DigestGenerator) digestContent(ctx context.Context, lang string, summaries []SummaryRecord) string {
	if len(summaries) == 0 {
		return NoActivityMessage(lang)
	}

	contents := make([]string, len(summaries))
	for i, s := range summaries {
		contents[i] = s.Content
	}
	combined := strings.Join(contents, "\n\n")

	apiKey, err := g.settings.APIKey()
	if err != nil || apiKey == "" {
		return combined
	}
	model, err := g.settings.Model()
	if err != nil {
		model = DefaultModel
	}

	client := g.newClient(apiKey)
	result, err := client.GenerateText(ctx, model, DailyPrompt(lang, combined))
	if err != nil {
		LogWarn("Failed to generate daily digest remotely, using combined summaries: %v", err)
		return combined
	}
	return result.Content
}

// DailyStat is one day's activity counts for historical views.
type DailyStat struct {
	Date                 string `json:"date" yaml:"date"`
	CaptureCount         int64  `json:"capture_count" yaml:"capture_count"`
	SummaryCount         int64  `json:"summary_count" yaml:"summary_count"`
	TotalDurationSeconds int64  `json:"total_duration_seconds" yaml:"total_duration_seconds"`
}

// DailyStats returns per-day statistics for the trailing number of days,
// oldest first. Days with a stored digest use its counts; other days are
// computed from the raw records.
func (g *DigestGenerator) DailyStats(days int) ([]DailyStat, error) {
	now := time.Now()
	endDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	startDate := endDate.AddDate(0, 0, -(days - 1))

	digests, err := g.store.DailySummariesBetween(
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02"), 0)
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]DailySummary, len(digests))
	for _, d := range digests {
		byDate[d.Date] = d
	}

	var stats []DailyStat
	for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
		date := day.Format("2006-01-02")
		if d, ok := byDate[date]; ok {
			stats = append(stats, DailyStat{
				Date:                 date,
				CaptureCount:         int64(d.CaptureCount),
				SummaryCount:         int64(d.SummaryCount),
				TotalDurationSeconds: d.TotalDurationSeconds,
			})
			continue
		}

		dayStart := day
		dayEnd := day.Add(24*time.Hour - time.Second)
		captures, err := g.store.CapturesBetween(&dayStart, &dayEnd, 0)
		if err != nil {
			return nil, err
		}
		summaries, err := g.store.SummariesBetween(&dayStart, &dayEnd, 0)
		if err != nil {
			return nil, err
		}
		var totalDuration int64
		for _, s := range summaries {
			totalDuration += int64(s.EndTime.Sub(s.StartTime) / time.Second)
		}
		stats = append(stats, DailyStat{
			Date:                 date,
			CaptureCount:         int64(len(captures)),
			SummaryCount:         int64(len(summaries)),
			TotalDurationSeconds: totalDuration,
		})
	}
	return stats, nil
}
