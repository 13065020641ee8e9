package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Email        string    `json:"email"`
	IsAdmin      bool      `json:"is_admin"`
	Disabled     bool      `json:"disabled"`
	CreatedAt    time.Time `json:"created_at"`
}

func (s *Store) CreateUser(ctx context.Context, username, passwordHash, displayName, email string, isAdmin bool) (User, error) {
	var u User
	err := s.db.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, display_name, email, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, username, password_hash, display_name, email, is_admin, disabled, created_at
	`, username, passwordHash, displayName, email, isAdmin).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.DisplayName, &u.Email, &u.IsAdmin, &u.Disabled, &u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrConflict
		}
		return User{}, err
	}
	return u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := s.db.QueryRow(ctx, `
		SELECT id, username, password_hash, display_name, email, is_admin, disabled, created_at
		FROM users WHERE username = $1
	`, username).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.DisplayName, &u.Email, &u.IsAdmin, &u.Disabled, &u.CreatedAt,
	)
	if err != nil {
		return User{}, err
	}
	return u, nil
}
