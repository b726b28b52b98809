package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rriggins/seniorsafe/internal/model"
)

type AppointmentStore struct {
	db *sql.DB
}

func NewAppointmentStore(db *sql.DB) *AppointmentStore {
	return &AppointmentStore{db: db}
}

func scanAppointment(scanner interface{ Scan(...any) error }) (*model.Appointment, error) {
	var a model.Appointment
	err := scanner.Scan(&a.ID, &a.UserID, &a.Title, &a.Location, &a.Notes, &a.StartsAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const appointmentCols = `id, user_id, title, location, notes, starts_at, created_at, updated_at`

func (s *AppointmentStore) Create(userID int64, title, location, notes string, startsAt time.Time) (*model.Appointment, error) {
	result, err := s.db.Exec(
		`INSERT INTO appointments (user_id, title, location, notes, starts_at) VALUES (?, ?, ?, ?, ?)`,
		userID, title, location, notes, startsAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id, userID)
}

func (s *AppointmentStore) GetByID(id, userID int64) (*model.Appointment, error) {
	row := s.db.QueryRow(
		`SELECT `+appointmentCols+` FROM appointments WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	a, err := scanAppointment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

func (s *AppointmentStore) ListByUser(userID int64) ([]model.Appointment, error) {
	rows, err := s.db.Query(
		`SELECT `+appointmentCols+` FROM appointments WHERE user_id = ? ORDER BY starts_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, *a)
	}
	return appts, rows.Err()
}

func (s *AppointmentStore) Update(id, userID int64, title, location, notes string, startsAt time.Time) (*model.Appointment, error) {
	_, err := s.db.Exec(
		`UPDATE appointments SET title = ?, location = ?, notes = ?, starts_at = ?, updated_at = datetime('now')
		 WHERE id = ? AND user_id = ?`,
		title, location, notes, startsAt.UTC(), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return s.GetByID(id, userID)
}

func (s *AppointmentStore) Delete(id, userID int64) error {
	_, err := s.db.Exec(`DELETE FROM appointments WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}
