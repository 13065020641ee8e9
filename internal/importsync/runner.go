package importsync

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"salesleads/internal/leads"
)

type Runner struct {
	customers Source
	leads     Source
	saver     Saver
	logger    *log.Logger
	now       func() time.Time
}

func NewRunner(customers, salesLeads Source, saver Saver, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		customers: customers,
		leads:     salesLeads,
		saver:     saver,
		logger:    logger,
		now:       time.Now,
	}
}

// Run fetches both data sets concurrently and replaces the stored data only
// when both decode cleanly.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if r.customers == nil || r.leads == nil {
		return Summary{}, fmt.Errorf("import sources not configured")
	}
	if r.saver == nil {
		return Summary{}, fmt.Errorf("import saver is nil")
	}

	started := r.now()
	r.logger.Printf("[import] starting import (customers=%s leads=%s)", r.customers.Name(), r.leads.Name())

	var ds Dataset
	ds.StartedAt = started

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		customers, err := fetch(gctx, r.customers, leads.DecodeCustomers)
		if err != nil {
			return err
		}
		ds.Customers = customers
		return nil
	})
	g.Go(func() error {
		salesLeads, err := fetch(gctx, r.leads, leads.DecodeLeads)
		if err != nil {
			return err
		}
		ds.Leads = salesLeads
		return nil
	})
	if err := g.Wait(); err != nil {
		r.logger.Printf("[import] fetch failed: %v", err)
		r.saver.RecordImportFailure(ctx, started, err)
		return Summary{}, err
	}

	if err := r.saver.SaveDataset(ctx, ds); err != nil {
		r.logger.Printf("[import] save failed: %v", err)
		return Summary{}, err
	}

	summary := Summary{
		Customers: len(ds.Customers),
		Leads:     len(ds.Leads),
		Owners:    leads.Owners(ds.Leads),
		Duration:  r.now().Sub(started),
	}
	r.logger.Printf("[import] import complete: customers=%d leads=%d owners=%d",
		summary.Customers, summary.Leads, len(summary.Owners))
	return summary, nil
}

func fetch[T any](ctx context.Context, src Source, decode func(io.Reader) ([]T, error)) ([]T, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src.Name(), err)
	}
	defer rc.Close()

	out, err := decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", src.Name(), err)
	}
	return out, nil
}
