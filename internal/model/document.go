package model

import "time"

// Document is a vault entry: metadata here, the file body in object storage
// under ObjectKey.
type Document struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	FileName    string    `json:"file_name"`
	ObjectKey   string    `json:"-"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}
