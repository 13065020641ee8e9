package importsync

import (
	"context"
	"time"

	"salesleads/internal/leads"
)

// Dataset is one complete fetch of the mock Dynamics data.
type Dataset struct {
	StartedAt time.Time
	Customers []leads.Customer
	Leads     []leads.Lead
}

type Summary struct {
	Customers int
	Leads     int
	Owners    []string
	Duration  time.Duration
}

// Saver persists a fetched dataset, replacing what was stored before.
type Saver interface {
	SaveDataset(context.Context, Dataset) error
	RecordImportFailure(ctx context.Context, startedAt time.Time, cause error)
}
