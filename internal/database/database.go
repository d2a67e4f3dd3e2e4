package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Initialize opens the SQLite database under ~/.applytrack and runs migrations
func Initialize() (*sql.DB, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	dataDir := filepath.Join(homeDir, ".applytrack")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return Open(filepath.Join(dataDir, "applytrack.db"))
}

// Open opens the database at path with WAL and a busy timeout and runs
// migrations.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// RunMigrations creates all necessary tables
func RunMigrations(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		role TEXT NOT NULL,
		user_id TEXT NOT NULL,
		fetched_at DATETIME NOT NULL,
		payload TEXT NOT NULL,
		saved_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (role, user_id),
		CHECK(role IN ('seeker', 'recruiter'))
	);

	CREATE TABLE IF NOT EXISTS status_updates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		applicant_id TEXT NOT NULL,
		job_id TEXT NOT NULL,
		display_status TEXT NOT NULL,
		backend_status TEXT,
		succeeded BOOLEAN NOT NULL DEFAULT 0,
		message TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_status_updates_key ON status_updates(applicant_id, job_id);
	CREATE INDEX IF NOT EXISTS idx_status_updates_created ON status_updates(created_at);
	`

	_, err := db.Exec(schema)
	return err
}
