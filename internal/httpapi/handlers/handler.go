package handlers

import (
	"context"

	"salesleads/internal/config"
	"salesleads/internal/extauth"
	"salesleads/internal/importsync"
	"salesleads/internal/leads"
	"salesleads/internal/service"
	"salesleads/internal/store"
)

// Service is the part of *service.Service the handlers call.
type Service interface {
	Customers(ctx context.Context) ([]service.CustomerView, error)
	Leads(ctx context.Context, owner string) ([]leads.Lead, error)
	Salespeople(ctx context.Context) ([]service.SalespersonView, error)
	Analyze(ctx context.Context, owner string) (service.AnalysisView, error)
	LastImport(ctx context.Context) (store.ImportRun, error)

	UploadDocument(ctx context.Context, in service.UploadInput) (service.DocumentView, error)
	GetDocument(ctx context.Context, id string) (service.DocumentView, error)
	ListDocuments(ctx context.Context) ([]service.DocumentView, error)
	GetSlice(ctx context.Context, id string, index int) (service.SliceView, error)
	ExportDocument(ctx context.Context, id string) (service.ExportView, error)

	CreateToken(ctx context.Context, in service.CreateTokenInput) (service.TokenView, error)
	LocalLogin(ctx context.Context, username, password string) (service.TokenView, error)
	LDAPLogin(ctx context.Context, username, password string) (service.TokenView, error)
	Providers() []extauth.Provider
}

// Importer runs one import synchronously.
type Importer interface {
	Run(ctx context.Context) (importsync.Summary, error)
}

// ImportTrigger starts imports in the background, one at a time.
type ImportTrigger interface {
	TriggerImport(ctx context.Context) (bool, error)
	Status() ImportStatus
}

type ImportStatus struct {
	Running    bool
	LastResult *importsync.Summary
	LastError  string
}

type Handler struct {
	cfg      config.Config
	svc      Service
	importer Importer
	trigger  ImportTrigger
}

func New(cfg config.Config, svc Service, importer Importer, trigger ImportTrigger) *Handler {
	return &Handler{
		cfg:      cfg,
		svc:      svc,
		importer: importer,
		trigger:  trigger,
	}
}
