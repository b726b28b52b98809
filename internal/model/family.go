package model

import "time"

type FamilyMessage struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

type FamilyPhoto struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	AuthorName  string    `json:"author_name"`
	ObjectKey   string    `json:"-"`
	Caption     string    `json:"caption"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}
