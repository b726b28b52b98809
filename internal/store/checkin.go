package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rriggins/seniorsafe/internal/model"
)

type CheckInStore struct {
	db *sql.DB
}

func NewCheckInStore(db *sql.DB) *CheckInStore {
	return &CheckInStore{db: db}
}

func scanCheckIn(scanner interface{ Scan(...any) error }) (*model.CheckIn, error) {
	var c model.CheckIn
	err := scanner.Scan(&c.ID, &c.UserID, &c.FamilyName, &c.CheckedInAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const checkInCols = `id, user_id, family_name, checked_in_at`

func (s *CheckInStore) Create(userID int64, familyName string, checkedInAt time.Time) (*model.CheckIn, error) {
	result, err := s.db.Exec(
		`INSERT INTO check_ins (user_id, family_name, checked_in_at) VALUES (?, ?, ?)`,
		userID, familyName, checkedInAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert check-in: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+checkInCols+` FROM check_ins WHERE id = ?`, id)
	c, err := scanCheckIn(row)
	if err != nil {
		return nil, fmt.Errorf("get check-in: %w", err)
	}
	return c, nil
}

// GetForDay returns the user's check-in whose timestamp falls inside the
// given day window, or nil. The caller supplies the window so the calendar
// day is evaluated in the facility timezone, not in UTC.
func (s *CheckInStore) GetForDay(userID int64, dayStart, dayEnd time.Time) (*model.CheckIn, error) {
	row := s.db.QueryRow(
		`SELECT `+checkInCols+` FROM check_ins
		 WHERE user_id = ? AND checked_in_at >= ? AND checked_in_at < ?
		 ORDER BY checked_in_at ASC LIMIT 1`,
		userID, dayStart.UTC(), dayEnd.UTC(),
	)
	c, err := scanCheckIn(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get check-in for day: %w", err)
	}
	return c, nil
}

// ListRecent returns the user's latest check-ins, newest first.
func (s *CheckInStore) ListRecent(userID int64, limit int) ([]model.CheckIn, error) {
	rows, err := s.db.Query(
		`SELECT `+checkInCols+` FROM check_ins WHERE user_id = ? ORDER BY checked_in_at DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list check-ins: %w", err)
	}
	defer rows.Close()

	var checkIns []model.CheckIn
	for rows.Next() {
		c, err := scanCheckIn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan check-in: %w", err)
		}
		checkIns = append(checkIns, *c)
	}
	return checkIns, rows.Err()
}
