package service

import (
	"context"
	"errors"
	"testing"

	"salesleads/internal/importsync"
	"salesleads/internal/leads"
)

func TestImportSaver(t *testing.T) {
	t.Parallel()
	svc, st := newTestService(t, Options{})
	saver := svc.ImportSaver()

	err := saver.SaveDataset(context.Background(), importsync.Dataset{
		StartedAt: june2018,
		Customers: []leads.Customer{{Name: "Contoso"}},
		Leads:     []leads.Lead{{Owner: "Jim Glynn", EstCloseDate: 43200}},
	})
	if err != nil {
		t.Fatalf("SaveDataset() error = %v", err)
	}
	saver.RecordImportFailure(context.Background(), june2018, errors.New("upstream down"))

	if len(st.runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(st.runs))
	}
	if st.runs[1].Error == nil || *st.runs[1].Error != "upstream down" {
		t.Fatalf("failure run = %+v", st.runs[1])
	}
	if len(st.leads) != 1 {
		t.Fatalf("stored leads = %d, want 1", len(st.leads))
	}
}
