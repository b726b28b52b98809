package store

import (
	"database/sql"
	"fmt"

	"github.com/rriggins/seniorsafe/internal/model"
)

type EmergencyInfoStore struct {
	db *sql.DB
}

func NewEmergencyInfoStore(db *sql.DB) *EmergencyInfoStore {
	return &EmergencyInfoStore{db: db}
}

const emergencyCols = `id, user_id, blood_type, allergies, conditions, primary_doctor_name, primary_doctor_phone, ec1_name, ec1_relationship, ec1_phone, ec2_name, ec2_relationship, ec2_phone, updated_at`

func scanEmergencyInfo(scanner interface{ Scan(...any) error }) (*model.EmergencyInfo, error) {
	var e model.EmergencyInfo
	err := scanner.Scan(
		&e.ID, &e.UserID, &e.BloodType, &e.Allergies, &e.Conditions,
		&e.PrimaryDoctorName, &e.PrimaryDoctorPhone,
		&e.EC1Name, &e.EC1Relationship, &e.EC1Phone,
		&e.EC2Name, &e.EC2Relationship, &e.EC2Phone,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *EmergencyInfoStore) GetByUser(userID int64) (*model.EmergencyInfo, error) {
	row := s.db.QueryRow(`SELECT `+emergencyCols+` FROM emergency_info WHERE user_id = ?`, userID)
	e, err := scanEmergencyInfo(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get emergency info: %w", err)
	}
	return e, nil
}

// Upsert replaces the user's single emergency card.
func (s *EmergencyInfoStore) Upsert(info *model.EmergencyInfo) (*model.EmergencyInfo, error) {
	_, err := s.db.Exec(
		`INSERT INTO emergency_info (user_id, blood_type, allergies, conditions,
		    primary_doctor_name, primary_doctor_phone,
		    ec1_name, ec1_relationship, ec1_phone,
		    ec2_name, ec2_relationship, ec2_phone, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		 ON CONFLICT(user_id) DO UPDATE SET
		    blood_type = excluded.blood_type,
		    allergies = excluded.allergies,
		    conditions = excluded.conditions,
		    primary_doctor_name = excluded.primary_doctor_name,
		    primary_doctor_phone = excluded.primary_doctor_phone,
		    ec1_name = excluded.ec1_name,
		    ec1_relationship = excluded.ec1_relationship,
		    ec1_phone = excluded.ec1_phone,
		    ec2_name = excluded.ec2_name,
		    ec2_relationship = excluded.ec2_relationship,
		    ec2_phone = excluded.ec2_phone,
		    updated_at = datetime('now')`,
		info.UserID, info.BloodType, info.Allergies, info.Conditions,
		info.PrimaryDoctorName, info.PrimaryDoctorPhone,
		info.EC1Name, info.EC1Relationship, info.EC1Phone,
		info.EC2Name, info.EC2Relationship, info.EC2Phone,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert emergency info: %w", err)
	}
	return s.GetByUser(info.UserID)
}
