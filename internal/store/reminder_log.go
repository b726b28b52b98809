package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rriggins/seniorsafe/internal/model"
)

type ReminderLogStore struct {
	db *sql.DB
}

func NewReminderLogStore(db *sql.DB) *ReminderLogStore {
	return &ReminderLogStore{db: db}
}

// RecordSent inserts the dedup marker for one (medication, date, time)
// triple. INSERT OR IGNORE against the unique index makes a losing racer a
// no-op, so overlapping sweep invocations cannot both record.
func (s *ReminderLogStore) RecordSent(medicationID, userID int64, date, scheduledTime string, sentAt time.Time) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO reminder_logs (medication_id, user_id, date, scheduled_time, sent_at)
		 VALUES (?, ?, ?, ?, ?)`,
		medicationID, userID, date, scheduledTime, sentAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record reminder sent: %w", err)
	}
	return nil
}

// WasSent checks whether a reminder was already sent for the triple today.
func (s *ReminderLogStore) WasSent(medicationID int64, date, scheduledTime string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM reminder_logs WHERE medication_id = ? AND date = ? AND scheduled_time = ?`,
		medicationID, date, scheduledTime,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check reminder sent: %w", err)
	}
	return count > 0, nil
}

// ListByUser returns a user's reminder history for one date.
func (s *ReminderLogStore) ListByUser(userID int64, date string) ([]model.ReminderLog, error) {
	rows, err := s.db.Query(
		`SELECT id, medication_id, user_id, date, scheduled_time, sent_at
		 FROM reminder_logs WHERE user_id = ? AND date = ? ORDER BY sent_at ASC`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("list reminder logs: %w", err)
	}
	defer rows.Close()

	var logs []model.ReminderLog
	for rows.Next() {
		var l model.ReminderLog
		if err := rows.Scan(&l.ID, &l.MedicationID, &l.UserID, &l.Date, &l.ScheduledTime, &l.SentAt); err != nil {
			return nil, fmt.Errorf("scan reminder log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// Cleanup deletes reminder markers older than the given time. Markers only
// need to survive the calendar day they dedup.
func (s *ReminderLogStore) Cleanup(before time.Time) error {
	_, err := s.db.Exec(`DELETE FROM reminder_logs WHERE sent_at < ?`, before.UTC())
	if err != nil {
		return fmt.Errorf("cleanup reminder logs: %w", err)
	}
	return nil
}
