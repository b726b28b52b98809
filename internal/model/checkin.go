package model

import "time"

// CheckIn records that the monitored person confirmed they are okay on a
// given calendar day. One meaningful check-in per user per day.
type CheckIn struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	FamilyName  string    `json:"family_name"`
	CheckedInAt time.Time `json:"checked_in_at"`
}
