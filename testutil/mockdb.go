package testutil

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// CreateInMemoryDB creates an in-memory SQLite database with the recap schema
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS captures (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			file_path TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			file_size INTEGER NOT NULL,
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS summaries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			content TEXT NOT NULL,
			capture_count INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS api_requests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			model TEXT NOT NULL,
			endpoint TEXT NOT NULL,
			prompt_tokens INTEGER,
			completion_tokens INTEGER,
			total_tokens INTEGER,
			status_code INTEGER,
			success INTEGER NOT NULL DEFAULT 1,
			error_message TEXT,
			duration_ms INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS daily_summaries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL UNIQUE,
			content TEXT NOT NULL,
			capture_count INTEGER NOT NULL DEFAULT 0,
			summary_count INTEGER NOT NULL DEFAULT 0,
			total_duration_seconds INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			t.Fatalf("Failed to create schema: %v", err)
		}
	}

	return db
}

// InsertCapture inserts a capture row at the given timestamp
func InsertCapture(t *testing.T, db *sql.DB, ts time.Time, filePath string) int64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO captures (timestamp, file_path, width, height, file_size) VALUES (?, ?, ?, ?, ?)`,
		ts.Format(time.RFC3339Nano), filePath, 1920, 1080, 4096,
	)
	if err != nil {
		t.Fatalf("Failed to insert capture: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// InsertSummary inserts a summary row covering [start, end]
func InsertSummary(t *testing.T, db *sql.DB, start, end time.Time, content string, captureCount int) int64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO summaries (start_time, end_time, content, capture_count) VALUES (?, ?, ?, ?)`,
		start.Format(time.RFC3339Nano), end.Format(time.RFC3339Nano), content, captureCount,
	)
	if err != nil {
		t.Fatalf("Failed to insert summary: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// SetSetting stores a settings key/value pair
func SetSetting(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		t.Fatalf("Failed to set setting %s: %v", key, err)
	}
}
