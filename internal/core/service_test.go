package core

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/JonMunkholm/ClimateDash/internal/logging"
)

func newTestService() *Service {
	return NewService(DefaultServiceConfig())
}

func ingest(t *testing.T, s *Service, text string) (*IngestResult, error) {
	t.Helper()
	return s.Ingest(context.Background(), strings.NewReader(text), int64(len(text)), "test.csv")
}

func TestService_InitialState(t *testing.T) {
	s := newTestService()
	st := s.State()
	if st == nil {
		t.Fatal("State() should never be nil")
	}
	if s.HasDataset() {
		t.Error("new service should have no dataset")
	}
	if st.Index.Countries == nil || st.Index.Years == nil {
		t.Error("initial index should be empty, not nil")
	}
}

func TestService_IngestResolvesSelection(t *testing.T) {
	s := newTestService()

	res, err := ingest(t, s, sampleCSV)
	if err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	if res.Records != 5 || res.Countries != 3 || res.Years != 2 {
		t.Errorf("result = %+v", res)
	}
	if !res.Reselected {
		t.Error("first load should resolve the selection")
	}

	want := Selection{Country: "United States", Year: 2021, HasYear: true}
	if got := s.State().Selection; got != want {
		t.Errorf("Selection = %+v, want %+v", got, want)
	}
	if s.State().Dataset.ID != res.DatasetID {
		t.Error("published dataset ID does not match result")
	}
}

func TestService_SelectionKeptWhenDomainUnchanged(t *testing.T) {
	s := newTestService()
	if _, err := ingest(t, s, sampleCSV); err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	s.Select("Brazil", 2020, true)

	res, err := ingest(t, s, sampleCSV)
	if err != nil {
		t.Fatalf("re-ingest error: %v", err)
	}
	if res.Reselected {
		t.Error("same domain should not re-resolve")
	}
	want := Selection{Country: "Brazil", Year: 2020, HasYear: true}
	if got := s.State().Selection; got != want {
		t.Errorf("Selection = %+v, want %+v", got, want)
	}
}

func TestService_SelectionResolvedWhenDomainChanges(t *testing.T) {
	s := newTestService()
	if _, err := ingest(t, s, sampleCSV); err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	s.Select("Germany", 2021, true)

	if _, err := ingest(t, s, "Country,Year,Population\nBrazil,2019,1\nChile,2018,2\n"); err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	want := Selection{Country: "Brazil", Year: 2019, HasYear: true}
	if got := s.State().Selection; got != want {
		t.Errorf("Selection = %+v, want %+v", got, want)
	}
}

func TestService_FailedIngestKeepsState(t *testing.T) {
	s := newTestService()
	if _, err := ingest(t, s, sampleCSV); err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	before := s.State()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "empty", input: "", wantErr: ErrEmptyInput},
		{name: "unparseable", input: "\"Country\nx", wantErr: ErrUnparseableInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ingest(t, s, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if res != nil {
				t.Error("failed ingest should not return a result")
			}
			if s.State() != before {
				t.Error("failed ingest replaced the state")
			}
		})
	}
}

func TestService_EmptyDatasetIsPublished(t *testing.T) {
	s := newTestService()
	if _, err := ingest(t, s, sampleCSV); err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}

	res, err := ingest(t, s, "Country,Year,Population\n")
	if !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("error = %v, want ErrEmptyDataset", err)
	}
	if res == nil || !res.Empty {
		t.Fatalf("result = %+v, want Empty", res)
	}

	st := s.State()
	if st.Dataset == nil || st.Dataset.Len() != 0 {
		t.Error("empty dataset should be published")
	}
	if len(st.Index.Countries) != 0 || len(st.Index.Years) != 0 {
		t.Errorf("index = %+v, want empty", st.Index)
	}
	if st.Selection != (Selection{}) {
		t.Errorf("selection = %+v, want empty", st.Selection)
	}

	v := s.Views(s.DefaultViewOptions())
	if v.Current != nil || len(v.Ranking) != 0 || len(v.Aggregate) != 0 {
		t.Errorf("views = %+v, want empty", v)
	}
}

func TestService_MissingColumnsDiagnostic(t *testing.T) {
	s := newTestService()
	res, err := ingest(t, s, "Country,Year\nChile,2020\n")
	if err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	if len(res.Diagnostics) != 1 || !strings.HasPrefix(res.Diagnostics[0], "missing recognized columns:") {
		t.Errorf("Diagnostics = %v", res.Diagnostics)
	}
}

func TestService_FileTooLarge(t *testing.T) {
	cfg := DefaultServiceConfig()
	cfg.Source.MaxBytes = 16
	s := NewService(cfg)

	if _, err := ingest(t, s, sampleCSV); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("declared size: error = %v, want ErrFileTooLarge", err)
	}
	_, err := s.Ingest(context.Background(), strings.NewReader(sampleCSV), -1, "stream")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("unknown size: error = %v, want ErrFileTooLarge", err)
	}
	if s.HasDataset() {
		t.Error("oversized input should not publish")
	}
}

func TestService_IngestLogsRequestMetadata(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logging.New(&buf, "info", "text"))
	defer slog.SetDefault(prev)

	ctx := ContextWithClientIP(context.Background(), "203.0.113.9")
	ctx = ContextWithUserAgent(ctx, "curl/8.5")
	s := newTestService()
	if _, err := s.Ingest(ctx, strings.NewReader(sampleCSV), int64(len(sampleCSV)), "climate.csv"); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"client_ip=203.0.113.9", "user_agent=curl/8.5", "source=climate.csv"} {
		if !strings.Contains(out, want) {
			t.Errorf("ingest log missing %s: %s", want, out)
		}
	}
}

func TestService_Select(t *testing.T) {
	s := newTestService()
	if _, err := ingest(t, s, sampleCSV); err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}

	st := s.Select("Atlantis", 1900, true)
	want := Selection{Country: "United States", Year: 2021, HasYear: true}
	if st.Selection != want {
		t.Errorf("Selection = %+v, want %+v", st.Selection, want)
	}

	st = s.Select("Germany", 2020, true)
	if st.Selection.Country != "Germany" || st.Selection.Year != 2020 {
		t.Errorf("Selection = %+v", st.Selection)
	}
	if s.State() != st {
		t.Error("Select should publish the returned state")
	}
}

func TestService_ConcurrentReaders(t *testing.T) {
	s := newTestService()
	if _, err := ingest(t, s, sampleCSV); err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if i%2 == 0 {
					s.Select("Brazil", 2020+j%2, true)
				}
				st := s.State()
				if st.Dataset == nil {
					t.Error("dataset disappeared")
					return
				}
				s.Views(s.DefaultViewOptions())
			}
		}(i)
	}
	wg.Wait()
}

func TestService_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "climate.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	s := newTestService()
	res, err := s.LoadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if res.Label != "climate.csv" || res.Records != 5 {
		t.Errorf("result = %+v", res)
	}

	if _, err := s.LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestService_ExportRequiresDataset(t *testing.T) {
	s := newTestService()
	var buf bytes.Buffer
	if err := s.ExportCSV(&buf); !errors.Is(err, ErrNoDataset) {
		t.Errorf("ExportCSV error = %v, want ErrNoDataset", err)
	}
	if err := s.ExportParquet(&buf); !errors.Is(err, ErrNoDataset) {
		t.Errorf("ExportParquet error = %v, want ErrNoDataset", err)
	}
}
