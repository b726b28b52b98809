package store

import (
	"database/sql"
	"fmt"

	"github.com/rriggins/seniorsafe/internal/model"
)

// FamilyFeedStore holds the shared message and photo feed. Feed visibility
// spans a family group: a member sees rows owned by anyone in the same group,
// so list queries take the full set of group member ids.
type FamilyFeedStore struct {
	db *sql.DB
}

func NewFamilyFeedStore(db *sql.DB) *FamilyFeedStore {
	return &FamilyFeedStore{db: db}
}

const messageCols = `id, user_id, author_name, body, created_at`

func (s *FamilyFeedStore) CreateMessage(userID int64, authorName, body string) (*model.FamilyMessage, error) {
	result, err := s.db.Exec(
		`INSERT INTO family_messages (user_id, author_name, body) VALUES (?, ?, ?)`,
		userID, authorName, body,
	)
	if err != nil {
		return nil, fmt.Errorf("insert family message: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	var m model.FamilyMessage
	row := s.db.QueryRow(`SELECT `+messageCols+` FROM family_messages WHERE id = ?`, id)
	if err := row.Scan(&m.ID, &m.UserID, &m.AuthorName, &m.Body, &m.CreatedAt); err != nil {
		return nil, fmt.Errorf("get family message: %w", err)
	}
	return &m, nil
}

func (s *FamilyFeedStore) ListMessages(memberIDs []int64, limit int) ([]model.FamilyMessage, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}
	query, args := inQuery(
		`SELECT `+messageCols+` FROM family_messages WHERE user_id IN (%s) ORDER BY created_at DESC, id DESC LIMIT ?`,
		memberIDs,
	)
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list family messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.FamilyMessage
	for rows.Next() {
		var m model.FamilyMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.AuthorName, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan family message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *FamilyFeedStore) DeleteMessage(id, userID int64) error {
	_, err := s.db.Exec(`DELETE FROM family_messages WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete family message: %w", err)
	}
	return nil
}

const photoCols = `id, user_id, author_name, object_key, caption, content_type, created_at`

func (s *FamilyFeedStore) CreatePhoto(userID int64, authorName, objectKey, caption, contentType string) (*model.FamilyPhoto, error) {
	result, err := s.db.Exec(
		`INSERT INTO family_photos (user_id, author_name, object_key, caption, content_type) VALUES (?, ?, ?, ?, ?)`,
		userID, authorName, objectKey, caption, contentType,
	)
	if err != nil {
		return nil, fmt.Errorf("insert family photo: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetPhoto(id)
}

func (s *FamilyFeedStore) GetPhoto(id int64) (*model.FamilyPhoto, error) {
	var p model.FamilyPhoto
	row := s.db.QueryRow(`SELECT `+photoCols+` FROM family_photos WHERE id = ?`, id)
	err := row.Scan(&p.ID, &p.UserID, &p.AuthorName, &p.ObjectKey, &p.Caption, &p.ContentType, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family photo: %w", err)
	}
	return &p, nil
}

func (s *FamilyFeedStore) ListPhotos(memberIDs []int64, limit int) ([]model.FamilyPhoto, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}
	query, args := inQuery(
		`SELECT `+photoCols+` FROM family_photos WHERE user_id IN (%s) ORDER BY created_at DESC, id DESC LIMIT ?`,
		memberIDs,
	)
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list family photos: %w", err)
	}
	defer rows.Close()

	var photos []model.FamilyPhoto
	for rows.Next() {
		var p model.FamilyPhoto
		if err := rows.Scan(&p.ID, &p.UserID, &p.AuthorName, &p.ObjectKey, &p.Caption, &p.ContentType, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan family photo: %w", err)
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (s *FamilyFeedStore) DeletePhoto(id, userID int64) error {
	_, err := s.db.Exec(`DELETE FROM family_photos WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete family photo: %w", err)
	}
	return nil
}

// inQuery expands an IN (%s) placeholder for the given ids.
func inQuery(format string, ids []int64) (string, []any) {
	placeholders := ""
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args = append(args, id)
	}
	return fmt.Sprintf(format, placeholders), args
}
