package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"salesleads/internal/auth"
	"salesleads/internal/extauth"
	"salesleads/internal/store"
)

type TokenView struct {
	ID      string `json:"id"`
	Token   string `json:"token"`
	Subject string `json:"subject"`
	IsAdmin bool   `json:"is_admin"`
}

type CreateTokenInput struct {
	Subject string
	Name    string
	IsAdmin bool
}

func (s *Service) CreateToken(ctx context.Context, in CreateTokenInput) (TokenView, error) {
	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		return TokenView{}, fmt.Errorf("%w: subject required", ErrInvalidInput)
	}

	rawToken, err := generateToken(32)
	if err != nil {
		return TokenView{}, err
	}
	id, err := s.store.CreateToken(ctx, subject, strings.TrimSpace(in.Name), auth.HashToken(rawToken), in.IsAdmin)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return TokenView{}, ErrConflict
		}
		return TokenView{}, err
	}
	return TokenView{ID: id.String(), Token: rawToken, Subject: subject, IsAdmin: in.IsAdmin}, nil
}

// LocalLogin checks a username and password against the users table and
// issues a fresh API token for the user.
func (s *Service) LocalLogin(ctx context.Context, username, password string) (TokenView, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return TokenView{}, fmt.Errorf("%w: username and password required", ErrInvalidInput)
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if store.IsNotFound(err) {
			return TokenView{}, ErrUnauthorized
		}
		return TokenView{}, err
	}
	if user.Disabled || user.PasswordHash == "" {
		return TokenView{}, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return TokenView{}, ErrUnauthorized
	}

	subject := user.DisplayName
	if subject == "" {
		subject = user.Username
	}
	return s.CreateToken(ctx, CreateTokenInput{Subject: subject, Name: "login", IsAdmin: user.IsAdmin})
}

// LDAPLogin binds against the directory. The display name becomes the token
// subject, which is the name leads carry as their owner.
func (s *Service) LDAPLogin(ctx context.Context, username, password string) (TokenView, error) {
	if s.ldap == nil {
		return TokenView{}, fmt.Errorf("%w: ldap login disabled", ErrNotFound)
	}
	if strings.TrimSpace(username) == "" || password == "" {
		return TokenView{}, fmt.Errorf("%w: username and password required", ErrInvalidInput)
	}

	identity, err := s.ldap.Authenticate(username, password)
	if err != nil {
		return TokenView{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return s.CreateToken(ctx, CreateTokenInput{Subject: identity.DisplayName, Name: "ldap", IsAdmin: identity.IsAdmin})
}

func (s *Service) Providers() []extauth.Provider {
	return extauth.Providers(s.LDAPEnabled())
}

// BootstrapAdmin creates the initial admin user when a password is configured.
// An existing user with the same name is left alone.
func (s *Service) BootstrapAdmin(ctx context.Context, logger *log.Logger, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := s.store.CreateUser(ctx, username, string(hash), username, "", true); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil
		}
		return err
	}
	logger.Printf("created admin user %q", username)
	return nil
}
