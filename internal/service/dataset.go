package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"salesleads/internal/cellvalue"
	"salesleads/internal/leads"
	"salesleads/internal/store"
)

type ImportSummary struct {
	Customers int      `json:"customers"`
	Leads     int      `json:"leads"`
	Owners    []string `json:"owners"`
}

type CustomerView struct {
	leads.Customer
	Address string `json:"address"`
}

type AnalysisView struct {
	leads.Analysis
	Cells           json.RawMessage `json:"cells"`
	ClosedSalesCell json.RawMessage `json:"closedSalesCell"`
}

type SalespersonView struct {
	leads.OwnerSummary
	Cell json.RawMessage `json:"cell"`
}

// SaveDataset replaces the stored customers and leads and records the run.
func (s *Service) SaveDataset(ctx context.Context, startedAt time.Time, customers []leads.Customer, salesLeads []leads.Lead) (ImportSummary, error) {
	for i, l := range salesLeads {
		if normalizeOwner(l.Owner) == "" {
			return ImportSummary{}, fmt.Errorf("%w: lead %d has no valid owner", ErrInvalidInput, i)
		}
	}

	if err := s.store.ReplaceDataset(ctx, customers, salesLeads); err != nil {
		s.recordImportFailure(ctx, startedAt, err)
		return ImportSummary{}, err
	}
	if _, err := s.store.InsertImportRun(ctx, store.ImportRun{
		StartedAt: startedAt,
		Customers: len(customers),
		Leads:     len(salesLeads),
	}); err != nil {
		return ImportSummary{}, err
	}

	return ImportSummary{
		Customers: len(customers),
		Leads:     len(salesLeads),
		Owners:    leads.Owners(salesLeads),
	}, nil
}

// RecordImportFailure stores a failed run so status reflects fetch errors too.
func (s *Service) RecordImportFailure(ctx context.Context, startedAt time.Time, cause error) {
	s.recordImportFailure(ctx, startedAt, cause)
}

func (s *Service) recordImportFailure(ctx context.Context, startedAt time.Time, cause error) {
	msg := cause.Error()
	_, _ = s.store.InsertImportRun(ctx, store.ImportRun{StartedAt: startedAt, Error: &msg})
}

func (s *Service) LastImport(ctx context.Context) (store.ImportRun, error) {
	run, err := s.store.LastImportRun(ctx)
	if err != nil {
		if store.IsNotFound(err) {
			return store.ImportRun{}, ErrNotFound
		}
		return store.ImportRun{}, err
	}
	return run, nil
}

func (s *Service) Customers(ctx context.Context) ([]CustomerView, error) {
	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CustomerView, 0, len(customers))
	for i, c := range customers {
		out = append(out, CustomerView{Customer: c, Address: leads.CustomerRowAddress(i)})
	}
	return out, nil
}

func (s *Service) Leads(ctx context.Context, owner string) ([]leads.Lead, error) {
	return s.store.ListLeads(ctx, normalizeOwner(owner))
}

func (s *Service) Salespeople(ctx context.Context) ([]SalespersonView, error) {
	all, err := s.store.ListLeads(ctx, "")
	if err != nil {
		return nil, err
	}
	summaries := leads.Summaries(all)
	out := make([]SalespersonView, 0, len(summaries))
	for _, sum := range summaries {
		cell, err := cellvalue.SummaryEntity(sum).ToJSON()
		if err != nil {
			return nil, err
		}
		out = append(out, SalespersonView{OwnerSummary: sum, Cell: cell})
	}
	return out, nil
}

// Analyze builds a fresh analysis for one salesperson. Every call runs its own session.
func (s *Service) Analyze(ctx context.Context, owner string) (AnalysisView, error) {
	owner = normalizeOwner(owner)
	if owner == "" {
		return AnalysisView{}, fmt.Errorf("%w: salesperson required", ErrInvalidInput)
	}

	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		return AnalysisView{}, err
	}
	salesLeads, err := s.store.ListLeads(ctx, owner)
	if err != nil {
		return AnalysisView{}, err
	}
	if len(salesLeads) == 0 {
		return AnalysisView{}, fmt.Errorf("%w: no leads for %q", ErrNotFound, owner)
	}

	analysis, err := leads.NewSession(owner, customers, salesLeads, s.now()).Analyze()
	if err != nil {
		if errors.Is(err, leads.ErrNoSalesperson) {
			return AnalysisView{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return AnalysisView{}, err
	}

	values := make([]cellvalue.CellValue, 0, len(analysis.Leads))
	for _, row := range analysis.Leads {
		values = append(values, cellvalue.LeadEntity(row))
	}
	cells, err := cellvalue.Marshal(values)
	if err != nil {
		return AnalysisView{}, err
	}
	closed, err := cellvalue.ClosedSalesArray(analysis.ClosedSales).ToJSON()
	if err != nil {
		return AnalysisView{}, err
	}

	return AnalysisView{Analysis: analysis, Cells: cells, ClosedSalesCell: closed}, nil
}
