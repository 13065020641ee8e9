package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"salesleads/internal/leads"
)

// ImportRun records the outcome of one import of the Dynamics data.
type ImportRun struct {
	ID         uuid.UUID `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Customers  int       `json:"customers"`
	Leads      int       `json:"leads"`
	Error      *string   `json:"error,omitempty"`
}

// ReplaceDataset swaps the whole customer and lead tables in one transaction.
// Row positions are kept so customer row addresses stay stable.
func (s *Store) ReplaceDataset(ctx context.Context, customers []leads.Customer, salesLeads []leads.Lead) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM customers`); err != nil {
		return fmt.Errorf("clear customers: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM sales_leads`); err != nil {
		return fmt.Errorf("clear sales leads: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"customers"},
		[]string{"position", "name", "phone", "city", "primary_contact", "email"},
		pgx.CopyFromSlice(len(customers), func(i int) ([]any, error) {
			c := customers[i]
			return []any{i, c.Name, c.Phone, c.City, c.PrimaryContact, c.Email}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy customers: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"sales_leads"},
		[]string{"position", "owner", "account", "topic", "probability", "est_close_date", "est_revenue"},
		pgx.CopyFromSlice(len(salesLeads), func(i int) ([]any, error) {
			l := salesLeads[i]
			return []any{i, l.Owner, l.Account, l.Topic, l.Probability, l.EstCloseDate, l.EstRevenue}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy sales leads: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *Store) ListCustomers(ctx context.Context) ([]leads.Customer, error) {
	rows, err := s.db.Query(ctx, `
		SELECT name, phone, city, primary_contact, email
		FROM customers
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]leads.Customer, 0)
	for rows.Next() {
		var c leads.Customer
		if err := rows.Scan(&c.Name, &c.Phone, &c.City, &c.PrimaryContact, &c.Email); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// ListLeads returns the leads in import order. An empty owner returns all of them.
func (s *Store) ListLeads(ctx context.Context, owner string) ([]leads.Lead, error) {
	rows, err := s.db.Query(ctx, `
		SELECT owner, account, topic, probability, est_close_date, est_revenue
		FROM sales_leads
		WHERE $1 = '' OR owner = $1
		ORDER BY position
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]leads.Lead, 0)
	for rows.Next() {
		var l leads.Lead
		if err := rows.Scan(&l.Owner, &l.Account, &l.Topic, &l.Probability, &l.EstCloseDate, &l.EstRevenue); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) InsertImportRun(ctx context.Context, run ImportRun) (ImportRun, error) {
	err := s.db.QueryRow(ctx, `
		INSERT INTO import_runs (started_at, customers, leads, error)
		VALUES ($1, $2, $3, $4)
		RETURNING id, finished_at
	`, run.StartedAt, run.Customers, run.Leads, run.Error).Scan(&run.ID, &run.FinishedAt)
	if err != nil {
		return ImportRun{}, err
	}
	return run, nil
}

func (s *Store) LastImportRun(ctx context.Context) (ImportRun, error) {
	var run ImportRun
	err := s.db.QueryRow(ctx, `
		SELECT id, started_at, finished_at, customers, leads, error
		FROM import_runs
		ORDER BY finished_at DESC
		LIMIT 1
	`).Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Customers, &run.Leads, &run.Error)
	if err != nil {
		return ImportRun{}, err
	}
	return run, nil
}
