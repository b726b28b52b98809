package store

import (
	"database/sql"
	"fmt"

	"github.com/rriggins/seniorsafe/internal/model"
)

type ChatStore struct {
	db *sql.DB
}

func NewChatStore(db *sql.DB) *ChatStore {
	return &ChatStore{db: db}
}

func (s *ChatStore) Append(userID int64, role, content string) (*model.ChatMessage, error) {
	result, err := s.db.Exec(
		`INSERT INTO chat_messages (user_id, role, content) VALUES (?, ?, ?)`,
		userID, role, content,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chat message: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	var m model.ChatMessage
	row := s.db.QueryRow(`SELECT id, user_id, role, content, created_at FROM chat_messages WHERE id = ?`, id)
	if err := row.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
		return nil, fmt.Errorf("get chat message: %w", err)
	}
	return &m, nil
}

// History returns the user's transcript oldest-first, capped at limit.
func (s *ChatStore) History(userID int64, limit int) ([]model.ChatMessage, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, role, content, created_at FROM (
		    SELECT id, user_id, role, content, created_at FROM chat_messages
		    WHERE user_id = ? ORDER BY id DESC LIMIT ?
		 ) ORDER BY id ASC`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list chat history: %w", err)
	}
	defer rows.Close()

	var msgs []model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *ChatStore) Clear(userID int64) error {
	_, err := s.db.Exec(`DELETE FROM chat_messages WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("clear chat history: %w", err)
	}
	return nil
}
