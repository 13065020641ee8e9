package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"salesleads/internal/store"
)

func TestExtractToken_BearerHeader(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		authz string
		want  string
	}{
		{"standard bearer", "Bearer my-token-123", "my-token-123"},
		{"lowercase bearer", "bearer my-token", "my-token"},
		{"bearer with extra spaces", "Bearer   spaced  ", "spaced"},
		{"empty bearer", "Bearer ", ""},
		{"non-bearer auth", "Basic dXNlcjpwYXNz", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r, _ := http.NewRequest("GET", "/", nil)
			r.Header.Set("Authorization", tt.authz)
			got := extractToken(r)
			if got != tt.want {
				t.Fatalf("extractToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractToken_XAPITokenHeader(t *testing.T) {
	t.Parallel()
	r, _ := http.NewRequest("GET", "/", nil)
	r.Header.Set("X-API-Token", "  tok-456  ")
	got := extractToken(r)
	if got != "tok-456" {
		t.Fatalf("extractToken() = %q, want %q", got, "tok-456")
	}
}

func TestExtractToken_BearerTakesPrecedence(t *testing.T) {
	t.Parallel()
	r, _ := http.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer from-bearer")
	r.Header.Set("X-API-Token", "from-header")
	got := extractToken(r)
	if got != "from-bearer" {
		t.Fatalf("extractToken() = %q, want %q", got, "from-bearer")
	}
}

func TestExtractToken_NoHeaders(t *testing.T) {
	t.Parallel()
	r, _ := http.NewRequest("GET", "/", nil)
	got := extractToken(r)
	if got != "" {
		t.Fatalf("extractToken() = %q, want empty", got)
	}
}

func TestAnonymousActor(t *testing.T) {
	t.Parallel()
	a := AnonymousActor()
	if !a.Anonymous {
		t.Fatal("AnonymousActor().Anonymous should be true")
	}
	if a.Subject != "" {
		t.Fatalf("AnonymousActor().Subject = %q, want empty", a.Subject)
	}
	if a.IsAdmin {
		t.Fatal("AnonymousActor().IsAdmin should be false")
	}
}

func TestActorFromClaims(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		claims  Claims
		wantSub string
		wantAdm bool
	}{
		{"admin", Claims{Subject: "admin", IsAdmin: true}, "admin", true},
		{"regular user", Claims{Subject: "user1", IsAdmin: false}, "user1", false},
		{"empty", Claims{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := ActorFromClaims(tt.claims)
			if a.Subject != tt.wantSub {
				t.Fatalf("Subject = %q, want %q", a.Subject, tt.wantSub)
			}
			if a.IsAdmin != tt.wantAdm {
				t.Fatalf("IsAdmin = %v, want %v", a.IsAdmin, tt.wantAdm)
			}
			if a.Anonymous {
				t.Fatal("ActorFromClaims should not be anonymous")
			}
		})
	}
}

type fakeTokens struct {
	tokens  map[string]store.APIToken
	touched []uuid.UUID
}

func (f *fakeTokens) AuthenticateToken(_ context.Context, tokenHash string) (store.APIToken, error) {
	t, ok := f.tokens[tokenHash]
	if !ok {
		return store.APIToken{}, pgx.ErrNoRows
	}
	return t, nil
}

func (f *fakeTokens) TouchTokenLastUsed(_ context.Context, id uuid.UUID) {
	f.touched = append(f.touched, id)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	tokens := &fakeTokens{tokens: map[string]store.APIToken{
		HashToken("user-token"):     {ID: userID, Subject: "Jim Glynn"},
		HashToken("disabled-token"): {ID: uuid.New(), Subject: "gone", Disabled: true},
	}}
	a := NewAuthenticator(tokens, "root-secret")

	claims, err := a.Authenticate(context.Background(), "root-secret")
	if err != nil || !claims.IsAdmin || claims.Subject != "admin" {
		t.Fatalf("Authenticate(admin) = %+v, %v", claims, err)
	}

	claims, err = a.Authenticate(context.Background(), "user-token")
	if err != nil {
		t.Fatalf("Authenticate(user) error = %v", err)
	}
	if claims.Subject != "Jim Glynn" || claims.IsAdmin {
		t.Fatalf("Authenticate(user) = %+v", claims)
	}
	if len(tokens.touched) != 1 || tokens.touched[0] != userID {
		t.Fatalf("touched = %v, want [%s]", tokens.touched, userID)
	}

	if _, err := a.Authenticate(context.Background(), "disabled-token"); err != ErrTokenDisabled {
		t.Fatalf("Authenticate(disabled) error = %v, want %v", err, ErrTokenDisabled)
	}
	if _, err := a.Authenticate(context.Background(), "unknown"); err == nil {
		t.Fatal("Authenticate(unknown) should fail")
	}
}

func TestAuthenticate_EmptyAdminTokenNeverMatches(t *testing.T) {
	t.Parallel()
	a := NewAuthenticator(&fakeTokens{}, "")
	if _, err := a.Authenticate(context.Background(), ""); err == nil {
		t.Fatal("empty token should not authenticate as admin")
	}
}

func TestMiddlewareAndRequireAdmin(t *testing.T) {
	t.Parallel()
	tokens := &fakeTokens{tokens: map[string]store.APIToken{
		HashToken("user-token"): {ID: uuid.New(), Subject: "alice"},
	}}
	a := NewAuthenticator(tokens, "root-secret")
	handler := a.Middleware(RequireAdmin(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}))

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"invalid", "nope", http.StatusUnauthorized},
		{"not admin", "user-token", http.StatusForbidden},
		{"admin", "root-secret", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			err := handler(e.NewContext(req, rec))
			got := rec.Code
			if he, ok := err.(*echo.HTTPError); ok {
				got = he.Code
			}
			if got != tt.want {
				t.Fatalf("status = %d, want %d", got, tt.want)
			}
		})
	}
}
