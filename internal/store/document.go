package store

import (
	"database/sql"
	"fmt"

	"github.com/rriggins/seniorsafe/internal/model"
)

type DocumentStore struct {
	db *sql.DB
}

func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func scanDocument(scanner interface{ Scan(...any) error }) (*model.Document, error) {
	var d model.Document
	err := scanner.Scan(&d.ID, &d.UserID, &d.FileName, &d.ObjectKey, &d.ContentType, &d.SizeBytes, &d.Category, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

const documentCols = `id, user_id, file_name, object_key, content_type, size_bytes, category, created_at`

func (s *DocumentStore) Create(userID int64, fileName, objectKey, contentType string, sizeBytes int64, category string) (*model.Document, error) {
	result, err := s.db.Exec(
		`INSERT INTO documents (user_id, file_name, object_key, content_type, size_bytes, category)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, fileName, objectKey, contentType, sizeBytes, category,
	)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id, userID)
}

func (s *DocumentStore) GetByID(id, userID int64) (*model.Document, error) {
	row := s.db.QueryRow(
		`SELECT `+documentCols+` FROM documents WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	d, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

func (s *DocumentStore) ListByUser(userID int64) ([]model.Document, error) {
	rows, err := s.db.Query(
		`SELECT `+documentCols+` FROM documents WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

func (s *DocumentStore) Delete(id, userID int64) error {
	_, err := s.db.Exec(`DELETE FROM documents WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
