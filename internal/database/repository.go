package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/khrees2412/applytrack/pkg/models"
)

// Store runs snapshot and audit queries against one database handle
type Store struct {
	db *sql.DB
}

// NewStore returns a Store backed by db
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Snapshot operations

// SaveSnapshot stores list as the last-known-good copy for the session identity
func (s *Store) SaveSnapshot(session models.Session, list models.ReconciledList) error {
	payload, err := json.Marshal(list.Applications)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	query := `INSERT INTO snapshots (role, user_id, fetched_at, payload, saved_at)
			  VALUES (?, ?, ?, ?, ?)
			  ON CONFLICT(role, user_id) DO UPDATE SET
			  fetched_at=excluded.fetched_at, payload=excluded.payload, saved_at=excluded.saved_at`
	_, err = s.db.Exec(query, string(session.Role), session.UserID, list.FetchedAt.UTC(), string(payload), time.Now().UTC())
	return err
}

// LoadSnapshot returns the saved list for the session identity, or nil when none exists
func (s *Store) LoadSnapshot(session models.Session) (*models.ReconciledList, error) {
	query := `SELECT fetched_at, payload FROM snapshots WHERE role=? AND user_id=?`
	var fetchedAt time.Time
	var payload string
	err := s.db.QueryRow(query, string(session.Role), session.UserID).Scan(&fetchedAt, &payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	apps := []models.Application{}
	if err := json.Unmarshal([]byte(payload), &apps); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &models.ReconciledList{
		Applications: apps,
		FetchedAt:    fetchedAt,
		Stale:        true,
	}, nil
}

// DeleteSnapshot removes the saved list for the session identity
func (s *Store) DeleteSnapshot(session models.Session) error {
	query := `DELETE FROM snapshots WHERE role=? AND user_id=?`
	_, err := s.db.Exec(query, string(session.Role), session.UserID)
	return err
}

// Status update audit operations

func (s *Store) RecordStatusUpdate(u *models.StatusUpdate) error {
	query := `INSERT INTO status_updates (applicant_id, job_id, display_status, backend_status, succeeded, message)
			  VALUES (?, ?, ?, ?, ?, ?)`
	result, err := s.db.Exec(query, u.ApplicantID, u.JobID, string(u.DisplayStatus),
		string(u.BackendStatus), u.Succeeded, u.Message)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	u.ID = int(id)
	return nil
}

// RecentStatusUpdates returns the latest audit entries, newest first
func (s *Store) RecentStatusUpdates(limit int) ([]*models.StatusUpdate, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, applicant_id, job_id, display_status, backend_status, succeeded, message, created_at
			  FROM status_updates ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	updates := []*models.StatusUpdate{}
	for rows.Next() {
		u := &models.StatusUpdate{}
		var displayStatus string
		var backendStatus, message sql.NullString
		err := rows.Scan(&u.ID, &u.ApplicantID, &u.JobID, &displayStatus, &backendStatus,
			&u.Succeeded, &message, &u.CreatedAt)
		if err != nil {
			return nil, err
		}
		u.DisplayStatus = models.DisplayStatus(displayStatus)
		u.BackendStatus = models.BackendStatus(backendStatus.String)
		u.Message = message.String
		updates = append(updates, u)
	}
	return updates, rows.Err()
}
