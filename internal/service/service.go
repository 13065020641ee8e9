package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"salesleads/internal/extauth"
	"salesleads/internal/leads"
	"salesleads/internal/slicefile"
	"salesleads/internal/storage"
	"salesleads/internal/store"
)

// DataStore is the persistence the service needs. *store.Store implements it.
type DataStore interface {
	ReplaceDataset(ctx context.Context, customers []leads.Customer, salesLeads []leads.Lead) error
	ListCustomers(ctx context.Context) ([]leads.Customer, error)
	ListLeads(ctx context.Context, owner string) ([]leads.Lead, error)
	InsertImportRun(ctx context.Context, run store.ImportRun) (store.ImportRun, error)
	LastImportRun(ctx context.Context) (store.ImportRun, error)

	CreateDocument(ctx context.Context, doc store.Document) (store.Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (store.Document, error)
	ListDocuments(ctx context.Context, limit int) ([]store.Document, error)

	CreateToken(ctx context.Context, subject, name, tokenHash string, isAdmin bool) (uuid.UUID, error)
	CreateUser(ctx context.Context, username, passwordHash, displayName, email string, isAdmin bool) (store.User, error)
	GetUserByUsername(ctx context.Context, username string) (store.User, error)
}

// LDAPAuthenticator verifies directory credentials.
type LDAPAuthenticator interface {
	Authenticate(username, password string) (*extauth.IdentityResult, error)
}

type Options struct {
	SliceSize      int
	MaxUploadBytes int64
	LDAP           LDAPAuthenticator
	Now            func() time.Time
}

type Service struct {
	store       DataStore
	blobs       storage.BlobStorage
	sliceSize   int
	maxUpload   int64
	ldap        LDAPAuthenticator
	now         func() time.Time
	exportGroup singleflight.Group
}

func New(st DataStore, blobs storage.BlobStorage, opts Options) *Service {
	if opts.SliceSize <= 0 {
		opts.SliceSize = slicefile.DefaultSliceSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:     st,
		blobs:     blobs,
		sliceSize: opts.SliceSize,
		maxUpload: opts.MaxUploadBytes,
		ldap:      opts.LDAP,
		now:       opts.Now,
	}
}

func (s *Service) LDAPEnabled() bool {
	return s.ldap != nil
}
