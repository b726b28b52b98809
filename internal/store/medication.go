package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rriggins/seniorsafe/internal/model"
)

type MedicationStore struct {
	db *sql.DB
}

func NewMedicationStore(db *sql.DB) *MedicationStore {
	return &MedicationStore{db: db}
}

func scanMedication(scanner interface{ Scan(...any) error }) (*model.Medication, error) {
	var m model.Medication
	var timesJSON string
	var active, reminderEnabled int

	err := scanner.Scan(
		&m.ID, &m.UserID, &m.MedName, &m.Dosage, &m.Frequency, &timesJSON,
		&active, &reminderEnabled, &m.ReminderPhone, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Active = active != 0
	m.ReminderEnabled = reminderEnabled != 0
	if err := json.Unmarshal([]byte(timesJSON), &m.Times); err != nil {
		return nil, fmt.Errorf("decode times: %w", err)
	}
	if m.Times == nil {
		m.Times = []string{}
	}
	return &m, nil
}

const medicationCols = `id, user_id, med_name, dosage, frequency, times, active, reminder_enabled, reminder_phone, created_at, updated_at`

func encodeTimes(times []string) (string, error) {
	if times == nil {
		times = []string{}
	}
	data, err := json.Marshal(times)
	if err != nil {
		return "", fmt.Errorf("encode times: %w", err)
	}
	return string(data), nil
}

func (s *MedicationStore) Create(userID int64, medName, dosage, frequency string, times []string, reminderEnabled bool, reminderPhone string) (*model.Medication, error) {
	timesJSON, err := encodeTimes(times)
	if err != nil {
		return nil, err
	}
	var enabledInt int
	if reminderEnabled {
		enabledInt = 1
	}

	result, err := s.db.Exec(
		`INSERT INTO medications (user_id, med_name, dosage, frequency, times, reminder_enabled, reminder_phone)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, medName, dosage, frequency, timesJSON, enabledInt, reminderPhone,
	)
	if err != nil {
		return nil, fmt.Errorf("insert medication: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id, userID)
}

func (s *MedicationStore) GetByID(id, userID int64) (*model.Medication, error) {
	row := s.db.QueryRow(
		`SELECT `+medicationCols+` FROM medications WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	m, err := scanMedication(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get medication: %w", err)
	}
	return m, nil
}

// ListByUser returns the user's active medications.
func (s *MedicationStore) ListByUser(userID int64) ([]model.Medication, error) {
	rows, err := s.db.Query(
		`SELECT `+medicationCols+` FROM medications WHERE user_id = ? AND active = 1 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	defer rows.Close()
	return scanMedications(rows)
}

// ListReminderCandidates returns, across all users, the medications the
// reminder sweep should consider: active, reminders on, and a destination
// phone on file. Rows missing a phone are a filter condition, not an error.
func (s *MedicationStore) ListReminderCandidates() ([]model.Medication, error) {
	rows, err := s.db.Query(
		`SELECT ` + medicationCols + ` FROM medications
		 WHERE active = 1 AND reminder_enabled = 1 AND reminder_phone != ''
		 ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list reminder candidates: %w", err)
	}
	defer rows.Close()
	return scanMedications(rows)
}

func (s *MedicationStore) Update(id, userID int64, medName, dosage, frequency string, times []string, reminderEnabled bool, reminderPhone string) (*model.Medication, error) {
	timesJSON, err := encodeTimes(times)
	if err != nil {
		return nil, err
	}
	var enabledInt int
	if reminderEnabled {
		enabledInt = 1
	}

	_, err = s.db.Exec(
		`UPDATE medications SET med_name = ?, dosage = ?, frequency = ?, times = ?, reminder_enabled = ?, reminder_phone = ?, updated_at = datetime('now')
		 WHERE id = ? AND user_id = ?`,
		medName, dosage, frequency, timesJSON, enabledInt, reminderPhone, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update medication: %w", err)
	}
	return s.GetByID(id, userID)
}

// Deactivate soft-deletes a medication. Rows are never hard-deleted so dose
// history stays intact.
func (s *MedicationStore) Deactivate(id, userID int64) error {
	_, err := s.db.Exec(
		`UPDATE medications SET active = 0, updated_at = datetime('now') WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("deactivate medication: %w", err)
	}
	return nil
}

func scanMedications(rows *sql.Rows) ([]model.Medication, error) {
	var meds []model.Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan medication: %w", err)
		}
		meds = append(meds, *m)
	}
	return meds, rows.Err()
}
