package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"salesleads/internal/leads"
	"salesleads/internal/store"
)

type fakeStore struct {
	mu        sync.Mutex
	customers []leads.Customer
	leads     []leads.Lead
	runs      []store.ImportRun
	documents map[uuid.UUID]store.Document
	tokens    map[string]store.APIToken
	users     map[string]store.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		documents: make(map[uuid.UUID]store.Document),
		tokens:    make(map[string]store.APIToken),
		users:     make(map[string]store.User),
	}
}

func (f *fakeStore) ReplaceDataset(_ context.Context, customers []leads.Customer, salesLeads []leads.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customers = append([]leads.Customer(nil), customers...)
	f.leads = append([]leads.Lead(nil), salesLeads...)
	return nil
}

func (f *fakeStore) ListCustomers(context.Context) ([]leads.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]leads.Customer{}, f.customers...), nil
}

func (f *fakeStore) ListLeads(_ context.Context, owner string) ([]leads.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []leads.Lead{}
	for _, l := range f.leads {
		if owner == "" || l.Owner == owner {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertImportRun(_ context.Context, run store.ImportRun) (store.ImportRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run.ID = uuid.New()
	run.FinishedAt = run.StartedAt.Add(time.Second)
	f.runs = append(f.runs, run)
	return run, nil
}

func (f *fakeStore) LastImportRun(context.Context) (store.ImportRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.runs) == 0 {
		return store.ImportRun{}, pgx.ErrNoRows
	}
	return f.runs[len(f.runs)-1], nil
}

func (f *fakeStore) CreateDocument(_ context.Context, doc store.Document) (store.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc.ID = uuid.New()
	doc.CreatedAt = time.Date(2018, 6, 1, 0, 0, len(f.documents), 0, time.UTC)
	f.documents[doc.ID] = doc
	return doc, nil
}

func (f *fakeStore) GetDocument(_ context.Context, id uuid.UUID) (store.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.documents[id]
	if !ok {
		return store.Document{}, pgx.ErrNoRows
	}
	return doc, nil
}

func (f *fakeStore) ListDocuments(_ context.Context, limit int) ([]store.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.Document, 0, len(f.documents))
	for _, d := range f.documents {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) CreateToken(_ context.Context, subject, name, tokenHash string, isAdmin bool) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[tokenHash]; ok {
		return uuid.Nil, store.ErrConflict
	}
	id := uuid.New()
	f.tokens[tokenHash] = store.APIToken{ID: id, Subject: subject, Name: name, IsAdmin: isAdmin}
	return id, nil
}

func (f *fakeStore) CreateUser(_ context.Context, username, passwordHash, displayName, email string, isAdmin bool) (store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[username]; ok {
		return store.User{}, store.ErrConflict
	}
	u := store.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		Email:        email,
		IsAdmin:      isAdmin,
	}
	f.users[username] = u
	return u, nil
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return store.User{}, pgx.ErrNoRows
	}
	return u, nil
}
