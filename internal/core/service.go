package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JonMunkholm/ClimateDash/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// DefaultIngestTimeout bounds one ingestion when no timeout is configured.
const DefaultIngestTimeout = 2 * time.Minute

// ServiceConfig holds the Service settings that come from configuration.
type ServiceConfig struct {
	PreferredCountry string
	Locale           language.Tag
	Source           SourceOptions
	MaxConcurrent    int
	MaxWait          time.Duration
	Timeout          time.Duration
	Pair             MetricPair
	RankingSize      int
}

// DefaultServiceConfig returns the settings used when nothing is configured.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		PreferredCountry: "United States",
		Locale:           language.English,
		Source:           SourceOptions{MaxBytes: 32 << 20},
		MaxConcurrent:    DefaultMaxConcurrentIngests,
		MaxWait:          DefaultMaxWaitTime,
		Timeout:          DefaultIngestTimeout,
		Pair:             MetricPair{X: MetricCO2PerCapita, Y: MetricAvgTemperature},
		RankingSize:      10,
	}
}

// State is an immutable snapshot of the dashboard. A new State replaces the
// old one on every ingestion or selection; existing snapshots never change.
type State struct {
	Dataset   *Dataset
	Index     DomainIndex
	Selection Selection
}

// IngestResult summarizes one ingestion.
type IngestResult struct {
	DatasetID   uuid.UUID `json:"datasetId"`
	Label       string    `json:"label"`
	Records     int       `json:"records"`
	Countries   int       `json:"countries"`
	Years       int       `json:"years"`
	Diagnostics []string  `json:"diagnostics"`
	Warnings    int       `json:"warnings"`
	Empty       bool      `json:"empty"`
	Reselected  bool      `json:"reselected"`
	Selection   Selection `json:"selection"`
	Duration    string    `json:"duration"`
}

// Service owns the dashboard state and runs the ingestion pipeline.
// Readers load the current State without locking; writers are serialized.
type Service struct {
	cfg      ServiceConfig
	resolver Resolver
	limiter  *IngestLimiter
	engine   *ViewEngine

	mu    sync.Mutex // serializes writers
	state atomic.Pointer[State]
}

// NewService creates a Service with an empty state.
func NewService(cfg ServiceConfig) *Service {
	if cfg.RankingSize <= 0 {
		cfg.RankingSize = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultIngestTimeout
	}
	s := &Service{
		cfg:      cfg,
		resolver: Resolver{PreferredCountry: cfg.PreferredCountry},
		limiter:  NewIngestLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		engine:   NewViewEngine(),
	}
	s.state.Store(&State{Index: DomainIndex{Countries: []string{}, Years: []int{}}})
	return s
}

// State returns the current snapshot. It is never nil.
func (s *Service) State() *State {
	return s.state.Load()
}

// HasDataset reports whether any ingestion has been published.
func (s *Service) HasDataset() bool {
	return s.State().Dataset != nil
}

// Ingest reads a CSV source and, if it is structurally valid, replaces the
// current dataset. size is the declared length of r, or -1 if unknown.
//
// On a structural error nothing is published and the previous state remains.
// A source without usable rows is published as an empty dataset; the
// returned result has Empty set and the error is ErrEmptyDataset.
func (s *Service) Ingest(ctx context.Context, r io.Reader, size int64, label string) (*IngestResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	id := uuid.New()
	logger := logging.WithFields(ctx,
		"dataset_id", id.String(),
		"source", label,
		"client_ip", ClientIPFromContext(ctx),
		"user_agent", UserAgentFromContext(ctx),
	)
	start := time.Now()

	if s.cfg.Source.MaxBytes > 0 && size > s.cfg.Source.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, size, s.cfg.Source.MaxBytes)
	}

	counter := NewCountingReader(r)
	text, err := ReadSource(counter, s.cfg.Source)
	if err != nil {
		logger.Warn("ingest read failed", "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, err := Parse(text)
	if err != nil {
		logger.Warn("ingest parse failed", "error", err)
		return nil, err
	}

	records, warnings, normErr := Normalize(table)
	if normErr != nil && !errors.Is(normErr, ErrEmptyDataset) {
		return nil, normErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	diagnostics := append([]string(nil), table.Diagnostics...)
	if missing := ValidateHeaders(table.Columns); len(missing) > 0 {
		diagnostics = append(diagnostics, headerDiagnostic(missing))
	}

	ds := &Dataset{
		ID:          id,
		SourceLabel: label,
		LoadedAt:    time.Now(),
		Columns:     table.Columns,
		Records:     records,
		Diagnostics: diagnostics,
		Warnings:    warnings,
	}
	idx := BuildIndex(records, s.cfg.Locale)

	s.mu.Lock()
	prev := s.state.Load()
	sel := prev.Selection
	reselect := prev.Dataset == nil || !prev.Index.Equal(idx)
	if reselect {
		sel = s.resolver.Resolve(prev.Selection, idx)
	}
	s.state.Store(&State{Dataset: ds, Index: idx, Selection: sel})
	s.mu.Unlock()

	result := &IngestResult{
		DatasetID:   id,
		Label:       label,
		Records:     len(records),
		Countries:   len(idx.Countries),
		Years:       len(idx.Years),
		Diagnostics: diagnostics,
		Warnings:    len(warnings),
		Empty:       normErr != nil,
		Reselected:  reselect,
		Selection:   sel,
		Duration:    time.Since(start).Round(time.Millisecond).String(),
	}

	logger.Info("dataset ingested",
		"bytes", counter.BytesRead,
		"records", result.Records,
		"countries", result.Countries,
		"years", result.Years,
		"diagnostics", len(diagnostics),
		"warnings", result.Warnings,
		"duration", result.Duration,
	)
	if normErr != nil {
		return result, normErr
	}
	return result, nil
}

// LoadFile ingests a CSV file from disk.
func (s *Service) LoadFile(ctx context.Context, path string) (*IngestResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	size := int64(-1)
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	return s.Ingest(ctx, f, size, filepath.Base(path))
}

// Select applies a user choice. Values not in the current domain fall back
// the same way an ingestion does.
func (s *Service) Select(country string, year int, hasYear bool) *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state.Load()
	sel := s.resolver.Resolve(Selection{Country: country, Year: year, HasYear: hasYear}, prev.Index)
	next := &State{Dataset: prev.Dataset, Index: prev.Index, Selection: sel}
	s.state.Store(next)
	return next
}

// DefaultViewOptions returns the configured scatter pair and ranking size.
func (s *Service) DefaultViewOptions() ViewOptions {
	return ViewOptions{
		Pair:        s.cfg.Pair,
		Aggregate:   MetricAvgTemperature,
		RankBy:      MetricPopulation,
		RankingSize: s.cfg.RankingSize,
	}
}

// Views computes the derived views of the current state.
func (s *Service) Views(opts ViewOptions) Views {
	st := s.State()
	return s.engine.Compute(st.Dataset, st.Selection, opts)
}

// EngineStats returns view cache counters.
func (s *Service) EngineStats() EngineStats {
	return s.engine.Stats()
}

// LimiterStatus returns the ingestion limiter state.
func (s *Service) LimiterStatus() IngestLimiterStatus {
	return s.limiter.Status()
}

// WaitForIngests blocks until running ingestions finish or ctx ends.
func (s *Service) WaitForIngests(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// ExportParquet writes the current dataset as Parquet.
func (s *Service) ExportParquet(w io.Writer) error {
	ds := s.State().Dataset
	if ds == nil {
		return ErrNoDataset
	}
	return WriteParquet(w, ds.Records)
}

// ExportCSV writes the current dataset in the recognized column layout.
func (s *Service) ExportCSV(w io.Writer) error {
	ds := s.State().Dataset
	if ds == nil {
		return ErrNoDataset
	}
	return WriteCSV(w, ds.Records)
}
