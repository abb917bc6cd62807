package internal

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Store is the persistence gateway: every table the core reads or writes goes
// through it. Reads within a single process observe prior writes (sqlite
// gives read-after-write consistency on one connection pool).
type Store struct {
	db *sql.DB
}

// NewStore wraps an opened database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertCapture persists one capture record and returns its id.
func (s *Store) InsertCapture(rec *CaptureRecord) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO captures (timestamp, file_path, width, height, file_size) VALUES (?, ?, ?, ?, ?)`,
		rec.Timestamp.Format(time.RFC3339Nano), rec.FilePath, rec.Width, rec.Height, rec.FileSize,
	)
	if err != nil {
		return 0, fmt.Errorf("insert capture: %w", err)
	}
	return res.LastInsertId()
}

// CapturesBetween returns capture records whose timestamp falls in
// [start, end], newest first. Nil bounds are open; limit <= 0 means no limit.
func (s *Store) CapturesBetween(start, end *time.Time, limit int) ([]CaptureRecord, error) {
	query := `SELECT id, timestamp, file_path, width, height, file_size FROM captures`
	where, args := timeRange("timestamp", start, end)
	query += where + ` ORDER BY timestamp DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query captures: %w", err)
	}
	defer rows.Close()

	var records []CaptureRecord
	for rows.Next() {
		var rec CaptureRecord
		var ts string
		if err := rows.Scan(&rec.ID, &ts, &rec.FilePath, &rec.Width, &rec.Height, &rec.FileSize); err != nil {
			return nil, fmt.Errorf("scan capture: %w", err)
		}
		if rec.Timestamp, err = parseTimestamp(ts); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// TodayCaptureCount returns how many captures were recorded today.
func (s *Store) TodayCaptureCount() (int64, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var count int64
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM captures WHERE timestamp >= ?`,
		dayStart.Format(time.RFC3339Nano),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count captures: %w", err)
	}
	return count, nil
}

// InsertSummary persists one summary record and returns its id.
func (s *Store) InsertSummary(rec *SummaryRecord) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO summaries (start_time, end_time, content, capture_count) VALUES (?, ?, ?, ?)`,
		rec.StartTime.Format(time.RFC3339Nano), rec.EndTime.Format(time.RFC3339Nano),
		rec.Content, rec.CaptureCount,
	)
	if err != nil {
		return 0, fmt.Errorf("insert summary: %w", err)
	}
	return res.LastInsertId()
}

// SummariesBetween returns summaries overlapping [start, end], newest first.
func (s *Store) SummariesBetween(start, end *time.Time, limit int) ([]SummaryRecord, error) {
	query := `SELECT id, start_time, end_time, content, capture_count, created_at FROM summaries`
	var conds []string
	var args []interface{}
	if start != nil {
		conds = append(conds, "start_time >= ?")
		args = append(args, start.Format(time.RFC3339Nano))
	}
	if end != nil {
		conds = append(conds, "end_time <= ?")
		args = append(args, end.Format(time.RFC3339Nano))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY start_time DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	var records []SummaryRecord
	for rows.Next() {
		rec, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// SummaryByID returns one summary, or nil when it does not exist.
func (s *Store) SummaryByID(id int64) (*SummaryRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, start_time, end_time, content, capture_count, created_at FROM summaries WHERE id = ?`, id,
	)
	rec, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSummary(row rowScanner) (*SummaryRecord, error) {
	var rec SummaryRecord
	var startStr, endStr, createdStr string
	if err := row.Scan(&rec.ID, &startStr, &endStr, &rec.Content, &rec.CaptureCount, &createdStr); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan summary: %w", err)
	}
	var err error
	if rec.StartTime, err = parseTimestamp(startStr); err != nil {
		return nil, err
	}
	if rec.EndTime, err = parseTimestamp(endStr); err != nil {
		return nil, err
	}
	if rec.CreatedAt, err = parseTimestamp(createdStr); err != nil {
		return nil, err
	}
	return &rec, nil
}

// InsertAPIRequest records one remote call attempt, success or failure.
func (s *Store) InsertAPIRequest(rec *APIRequestRecord) (int64, error) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	success := 0
	if rec.Success {
		success = 1
	}
	var errMsg interface{}
	if rec.ErrorMessage != "" {
		errMsg = rec.ErrorMessage
	}
	res, err := s.db.Exec(
		`INSERT INTO api_requests (
			timestamp, model, endpoint, prompt_tokens, completion_tokens, total_tokens,
			status_code, success, error_message, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp.Format(time.RFC3339Nano), rec.Model, rec.Endpoint,
		nullableInt(rec.PromptTokens), nullableInt(rec.CompletionTokens), nullableInt(rec.TotalTokens),
		rec.StatusCode, success, errMsg, rec.DurationMS,
	)
	if err != nil {
		return 0, fmt.Errorf("insert api request: %w", err)
	}
	return res.LastInsertId()
}

// APIStatistics aggregates api_requests over [start, end].
func (s *Store) APIStatistics(start, end *time.Time) (APIStatistics, error) {
	query := `SELECT
			COALESCE(COUNT(*), 0),
			COALESCE(SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(prompt_tokens), 0),
			COALESCE(SUM(completion_tokens), 0),
			COALESCE(SUM(total_tokens), 0),
			AVG(duration_ms)
		FROM api_requests`
	where, args := timeRange("timestamp", start, end)
	query += where

	var stats APIStatistics
	var avg sql.NullFloat64
	err := s.db.QueryRow(query, args...).Scan(
		&stats.TotalRequests, &stats.SuccessfulRequests, &stats.FailedRequests,
		&stats.TotalPromptTokens, &stats.TotalCompletionTokens, &stats.TotalTokens, &avg,
	)
	if err != nil {
		return APIStatistics{}, fmt.Errorf("query api statistics: %w", err)
	}
	if avg.Valid {
		stats.AvgDurationMS = &avg.Float64
	}
	return stats, nil
}

// UpsertDailySummary inserts or replaces the digest row for a date.
func (s *Store) UpsertDailySummary(rec *DailySummary) (int64, error) {
	_, err := s.db.Exec(
		`INSERT INTO daily_summaries (date, content, capture_count, summary_count, total_duration_seconds, updated_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(date) DO UPDATE SET
			content = excluded.content,
			capture_count = excluded.capture_count,
			summary_count = excluded.summary_count,
			total_duration_seconds = excluded.total_duration_seconds,
			updated_at = CURRENT_TIMESTAMP`,
		rec.Date, rec.Content, rec.CaptureCount, rec.SummaryCount, rec.TotalDurationSeconds,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert daily summary: %w", err)
	}

	var id int64
	if err := s.db.QueryRow(`SELECT id FROM daily_summaries WHERE date = ?`, rec.Date).Scan(&id); err != nil {
		return 0, fmt.Errorf("fetch daily summary id: %w", err)
	}
	return id, nil
}

// DailySummaryByDate returns the digest for a YYYY-MM-DD date, or nil.
func (s *Store) DailySummaryByDate(date string) (*DailySummary, error) {
	row := s.db.QueryRow(
		`SELECT id, date, content, capture_count, summary_count, total_duration_seconds, created_at, updated_at
		 FROM daily_summaries WHERE date = ?`, date,
	)
	var rec DailySummary
	var createdStr, updatedStr string
	err := row.Scan(&rec.ID, &rec.Date, &rec.Content, &rec.CaptureCount, &rec.SummaryCount,
		&rec.TotalDurationSeconds, &createdStr, &updatedStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan daily summary: %w", err)
	}
	if rec.CreatedAt, err = parseTimestamp(createdStr); err != nil {
		return nil, err
	}
	if rec.UpdatedAt, err = parseTimestamp(updatedStr); err != nil {
		return nil, err
	}
	return &rec, nil
}

// DailySummariesBetween returns digests for dates in [startDate, endDate],
// newest first. Dates are YYYY-MM-DD strings; empty means open.
func (s *Store) DailySummariesBetween(startDate, endDate string, limit int) ([]DailySummary, error) {
	query := `SELECT id, date, content, capture_count, summary_count, total_duration_seconds, created_at, updated_at
		FROM daily_summaries`
	var conds []string
	var args []interface{}
	if startDate != "" {
		conds = append(conds, "date >= ?")
		args = append(args, startDate)
	}
	if endDate != "" {
		conds = append(conds, "date <= ?")
		args = append(args, endDate)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY date DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query daily summaries: %w", err)
	}
	defer rows.Close()

	var records []DailySummary
	for rows.Next() {
		var rec DailySummary
		var createdStr, updatedStr string
		if err := rows.Scan(&rec.ID, &rec.Date, &rec.Content, &rec.CaptureCount, &rec.SummaryCount,
			&rec.TotalDurationSeconds, &createdStr, &updatedStr); err != nil {
			return nil, fmt.Errorf("scan daily summary: %w", err)
		}
		if rec.CreatedAt, err = parseTimestamp(createdStr); err != nil {
			return nil, err
		}
		if rec.UpdatedAt, err = parseTimestamp(updatedStr); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetSetting returns the value for a settings key. Missing keys return
// ("", sql.ErrNoRows).
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ? LIMIT 1`, key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSetting inserts or updates a settings key.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

func timeRange(column string, start, end *time.Time) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if start != nil {
		conds = append(conds, column+" >= ?")
		args = append(args, start.Format(time.RFC3339Nano))
	}
	if end != nil {
		conds = append(conds, column+" <= ?")
		args = append(args, end.Format(time.RFC3339Nano))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func nullableInt(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// parseTimestamp accepts RFC3339 as well as SQLite's CURRENT_TIMESTAMP
// formats.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04:05.999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp: %q", s)
}
