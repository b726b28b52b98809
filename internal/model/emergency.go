package model

import "time"

// EmergencyInfo is a single card per user: doctor, two emergency contacts,
// and free-text medical details.
type EmergencyInfo struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	BloodType          string    `json:"blood_type"`
	Allergies          string    `json:"allergies"`
	Conditions         string    `json:"conditions"`
	PrimaryDoctorName  string    `json:"primary_doctor_name"`
	PrimaryDoctorPhone string    `json:"primary_doctor_phone"`
	EC1Name            string    `json:"ec1_name"`
	EC1Relationship    string    `json:"ec1_relationship"`
	EC1Phone           string    `json:"ec1_phone"`
	EC2Name            string    `json:"ec2_name"`
	EC2Relationship    string    `json:"ec2_relationship"`
	EC2Phone           string    `json:"ec2_phone"`
	UpdatedAt          time.Time `json:"updated_at"`
}
