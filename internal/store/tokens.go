package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// APIToken represents a row in the api_tokens table.
type APIToken struct {
	ID         uuid.UUID  `json:"id"`
	Subject    string     `json:"subject"`
	Name       string     `json:"name"`
	IsAdmin    bool       `json:"is_admin"`
	Disabled   bool       `json:"disabled"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

func (s *Store) CreateToken(ctx context.Context, subject, name, tokenHash string, isAdmin bool) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRow(ctx, `
		INSERT INTO api_tokens (token_hash, subject, name, is_admin)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, tokenHash, subject, name, isAdmin).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, ErrConflict
		}
		return uuid.Nil, err
	}
	return id, nil
}

// AuthenticateToken looks up a token by hash and returns its metadata.
func (s *Store) AuthenticateToken(ctx context.Context, tokenHash string) (APIToken, error) {
	var t APIToken
	err := s.db.QueryRow(ctx, `
		SELECT id, subject, name, is_admin, disabled, created_at, last_used_at
		FROM api_tokens
		WHERE token_hash = $1
	`, tokenHash).Scan(&t.ID, &t.Subject, &t.Name, &t.IsAdmin, &t.Disabled, &t.CreatedAt, &t.LastUsedAt)
	if err != nil {
		return APIToken{}, err
	}
	return t, nil
}

func (s *Store) TouchTokenLastUsed(ctx context.Context, id uuid.UUID) {
	_, _ = s.db.Exec(ctx, `UPDATE api_tokens SET last_used_at = now() WHERE id = $1`, id)
}
