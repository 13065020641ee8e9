package service

import (
	"context"
	"time"

	"salesleads/internal/importsync"
)

type importSaver struct {
	svc *Service
}

// ImportSaver exposes the service as the sink of importsync runs.
func (s *Service) ImportSaver() importsync.Saver {
	return importSaver{svc: s}
}

func (a importSaver) SaveDataset(ctx context.Context, ds importsync.Dataset) error {
	_, err := a.svc.SaveDataset(ctx, ds.StartedAt, ds.Customers, ds.Leads)
	return err
}

func (a importSaver) RecordImportFailure(ctx context.Context, startedAt time.Time, cause error) {
	a.svc.RecordImportFailure(ctx, startedAt, cause)
}
