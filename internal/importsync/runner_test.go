package importsync

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

const customersJSON = `[{"Name":"Contoso","Phone":"555-0100","City":"Redmond","PrimaryContact":"Ann","Email":"ann@contoso.com"}]`

const leadsJSON = `[
	{"Owner":"Jim Glynn","Account":"Contoso","Topic":"Laptops","Probability":0.5,"EstCloseDate":43200,"EstRevenue":2000},
	{"Owner":"Nancy Smith","Account":"Contoso","Topic":"Phones","Probability":"20%","EstCloseDate":"3/1/2018","EstRevenue":"$1,000"}
]`

type recordSaver struct {
	mu       sync.Mutex
	saved    []Dataset
	failures []error
	err      error
}

func (r *recordSaver) SaveDataset(_ context.Context, ds Dataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, ds)
	return nil
}

func (r *recordSaver) RecordImportFailure(_ context.Context, _ time.Time, cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, cause)
}

func writeSource(t *testing.T, name, content string) FileSource {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return FileSource{Path: p}
}

func TestRunner_ImportsFromFiles(t *testing.T) {
	t.Parallel()

	saver := &recordSaver{}
	runner := NewRunner(
		writeSource(t, "Customers.json", customersJSON),
		writeSource(t, "SalesLeadsData.json", leadsJSON),
		saver,
		log.New(io.Discard, "", 0),
	)

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Customers != 1 || summary.Leads != 2 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(summary.Owners) != 2 {
		t.Fatalf("owners = %v, want 2", summary.Owners)
	}
	if len(saver.saved) != 1 || len(saver.failures) != 0 {
		t.Fatalf("saved = %d failures = %d", len(saver.saved), len(saver.failures))
	}
	if got := saver.saved[0].Leads[1].EstRevenue; got != 1000 {
		t.Fatalf("EstRevenue = %v, want 1000", got)
	}
}

func TestRunner_FetchFailureKeepsStoredData(t *testing.T) {
	t.Parallel()

	saver := &recordSaver{}
	runner := NewRunner(
		writeSource(t, "Customers.json", customersJSON),
		FileSource{Path: filepath.Join(t.TempDir(), "missing.json")},
		saver,
		log.New(io.Discard, "", 0),
	)

	if _, err := runner.Run(context.Background()); err == nil {
		t.Fatal("Run() should fail when a source is missing")
	}
	if len(saver.saved) != 0 {
		t.Fatalf("saved = %d, want 0", len(saver.saved))
	}
	if len(saver.failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(saver.failures))
	}
}

func TestRunner_DecodeFailure(t *testing.T) {
	t.Parallel()

	saver := &recordSaver{}
	runner := NewRunner(
		writeSource(t, "Customers.json", customersJSON),
		writeSource(t, "SalesLeadsData.json", `{"not":"an array"}`),
		saver,
		log.New(io.Discard, "", 0),
	)
	_, err := runner.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode") {
		t.Fatalf("Run() error = %v, want decode error", err)
	}
}

func TestHTTPSource_BypassesCache(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	headers := map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		headers[r.URL.Path] = r.Header.Get("Cache-Control")
		mu.Unlock()
		switch r.URL.Path {
		case "/Customers.json":
			_, _ = io.WriteString(w, customersJSON)
		case "/SalesLeadsData.json":
			_, _ = io.WriteString(w, leadsJSON)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	saver := &recordSaver{}
	runner := NewRunner(
		NewSource(srv.URL+"/Customers.json", srv.Client()),
		NewSource(srv.URL+"/SalesLeadsData.json", srv.Client()),
		saver,
		log.New(io.Discard, "", 0),
	)
	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	for path, cc := range headers {
		if cc != "no-cache" {
			t.Fatalf("%s Cache-Control = %q, want no-cache", path, cc)
		}
	}
	if len(headers) != 2 {
		t.Fatalf("requests = %d, want 2", len(headers))
	}
}

func TestHTTPSource_StatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	_, err := NewSource(srv.URL, srv.Client()).Open(context.Background())
	if err == nil || !strings.Contains(err.Error(), "410") {
		t.Fatalf("Open() error = %v, want status 410", err)
	}
}

func TestNewSource(t *testing.T) {
	t.Parallel()
	tests := []struct {
		location string
		wantHTTP bool
	}{
		{"MockDynamicsData/Customers.json", false},
		{"https://example.com/Customers.json", true},
		{"HTTP://example.com/x.json", true},
		{" /abs/path.json ", false},
	}
	for _, tt := range tests {
		_, isHTTP := NewSource(tt.location, nil).(HTTPSource)
		if isHTTP != tt.wantHTTP {
			t.Fatalf("NewSource(%q) http = %v, want %v", tt.location, isHTTP, tt.wantHTTP)
		}
	}
}
