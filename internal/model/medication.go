package model

import "time"

// Medication is a scheduled medication owned by one user. Times holds
// wall-clock "HH:MM" strings interpreted in the configured facility
// timezone; "as needed" medications carry an empty Times list and are
// never swept for reminders.
type Medication struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	MedName         string    `json:"med_name"`
	Dosage          string    `json:"dosage"`
	Frequency       string    `json:"frequency"`
	Times           []string  `json:"times"`
	Active          bool      `json:"active"`
	ReminderEnabled bool      `json:"reminder_enabled"`
	ReminderPhone   string    `json:"reminder_phone"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DoseDescription returns the human-readable name used in reminder texts.
func (m *Medication) DoseDescription() string {
	if m.Dosage != "" {
		return m.MedName + " " + m.Dosage
	}
	return m.MedName
}

// DoseLog marks one scheduled dose, on one date, as taken. Existence is
// the taken/untaken signal; at most one row per triple.
type DoseLog struct {
	ID            int64     `json:"id"`
	MedicationID  int64     `json:"medication_id"`
	Date          string    `json:"date"`
	ScheduledTime string    `json:"scheduled_time"`
	CreatedAt     time.Time `json:"created_at"`
}

// ReminderLog is the dedup marker for the reminder sweep: at most one
// reminder per (medication, date, scheduled time), enforced by a unique
// index.
type ReminderLog struct {
	ID            int64     `json:"id"`
	MedicationID  int64     `json:"medication_id"`
	UserID        int64     `json:"user_id"`
	Date          string    `json:"date"`
	ScheduledTime string    `json:"scheduled_time"`
	SentAt        time.Time `json:"sent_at"`
}
