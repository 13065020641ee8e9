package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Document is the metadata of an uploaded file. The bytes live in blob storage under BlobKey.
type Document struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Digest      string    `json:"digest"`
	SizeBytes   int64     `json:"size"`
	BlobKey     string    `json:"-"`
	SliceSize   int       `json:"slice_size"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

const documentColumns = `id, name, content_type, digest, size_bytes, blob_key, slice_size, created_by, created_at`

func scanDocument(row interface{ Scan(...any) error }) (Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.Name, &d.ContentType, &d.Digest, &d.SizeBytes, &d.BlobKey, &d.SliceSize, &d.CreatedBy, &d.CreatedAt)
	return d, err
}

func (s *Store) CreateDocument(ctx context.Context, doc Document) (Document, error) {
	return scanDocument(s.db.QueryRow(ctx, `
		INSERT INTO documents (name, content_type, digest, size_bytes, blob_key, slice_size, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+documentColumns,
		doc.Name, doc.ContentType, doc.Digest, doc.SizeBytes, doc.BlobKey, doc.SliceSize, doc.CreatedBy,
	))
}

func (s *Store) GetDocument(ctx context.Context, id uuid.UUID) (Document, error) {
	return scanDocument(s.db.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
}

func (s *Store) ListDocuments(ctx context.Context, limit int) ([]Document, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
