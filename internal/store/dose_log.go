package store

import (
	"database/sql"
	"fmt"

	"github.com/rriggins/seniorsafe/internal/model"
)

type DoseLogStore struct {
	db *sql.DB
}

func NewDoseLogStore(db *sql.DB) *DoseLogStore {
	return &DoseLogStore{db: db}
}

// MarkTaken records a dose as taken. Marking an already-taken dose is a
// no-op rather than an error.
func (s *DoseLogStore) MarkTaken(medicationID int64, date, scheduledTime string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO med_logs (medication_id, date, scheduled_time) VALUES (?, ?, ?)`,
		medicationID, date, scheduledTime,
	)
	if err != nil {
		return fmt.Errorf("mark dose taken: %w", err)
	}
	return nil
}

// UnmarkTaken removes the taken marker. Removing an absent marker is a no-op.
func (s *DoseLogStore) UnmarkTaken(medicationID int64, date, scheduledTime string) error {
	_, err := s.db.Exec(
		`DELETE FROM med_logs WHERE medication_id = ? AND date = ? AND scheduled_time = ?`,
		medicationID, date, scheduledTime,
	)
	if err != nil {
		return fmt.Errorf("unmark dose taken: %w", err)
	}
	return nil
}

// Exists reports whether the dose was logged taken. Existence is the signal
// the sweep uses to suppress a reminder.
func (s *DoseLogStore) Exists(medicationID int64, date, scheduledTime string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM med_logs WHERE medication_id = ? AND date = ? AND scheduled_time = ?`,
		medicationID, date, scheduledTime,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check dose log: %w", err)
	}
	return count > 0, nil
}

// ListByDate returns the taken markers for all of a user's medications on
// one calendar date.
func (s *DoseLogStore) ListByDate(userID int64, date string) ([]model.DoseLog, error) {
	rows, err := s.db.Query(
		`SELECT l.id, l.medication_id, l.date, l.scheduled_time, l.created_at
		 FROM med_logs l JOIN medications m ON m.id = l.medication_id
		 WHERE m.user_id = ? AND l.date = ?
		 ORDER BY l.scheduled_time ASC`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("list dose logs: %w", err)
	}
	defer rows.Close()

	var logs []model.DoseLog
	for rows.Next() {
		var l model.DoseLog
		if err := rows.Scan(&l.ID, &l.MedicationID, &l.Date, &l.ScheduledTime, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan dose log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
