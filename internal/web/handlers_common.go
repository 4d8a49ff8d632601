package web

// handlers_common.go holds request parsing helpers and response types shared
// across handlers.

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/ClimateDash/internal/core"
	"github.com/google/uuid"
)

// maxRankingSize caps the n query parameter of the ranking view.
const maxRankingSize = 250

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file.
const multipartMemory = 8 << 20

// multipartOverhead is the slack allowed on top of the file size for
// boundaries and form fields.
const multipartOverhead = 1 << 20

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseMetricParam reads a metric column name from the query string.
func parseMetricParam(r *http.Request, name string, defaultVal core.Metric) (core.Metric, error) {
	val := strings.TrimSpace(r.URL.Query().Get(name))
	if val == "" {
		return defaultVal, nil
	}
	return core.ParseMetric(val)
}

// parseViewOptions overlays the x, y, metric, field and n query parameters
// on the configured defaults.
func parseViewOptions(r *http.Request, defaults core.ViewOptions) (core.ViewOptions, error) {
	opts := defaults
	var err error

	if opts.Pair.X, err = parseMetricParam(r, "x", defaults.Pair.X); err != nil {
		return opts, err
	}
	if opts.Pair.Y, err = parseMetricParam(r, "y", defaults.Pair.Y); err != nil {
		return opts, err
	}
	if opts.Aggregate, err = parseMetricParam(r, "metric", defaults.Aggregate); err != nil {
		return opts, err
	}
	if opts.RankBy, err = parseMetricParam(r, "field", defaults.RankBy); err != nil {
		return opts, err
	}
	opts.RankingSize = min(parseIntParam(r, "n", defaults.RankingSize), maxRankingSize)
	return opts, nil
}

// parseYear parses a year form value. An empty value means "no year".
func parseYear(val string) (year int, ok bool, err error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0, false, nil
	}
	year, err = strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("%w: year %q", errInvalidParam, val)
	}
	return year, true, nil
}

// safeRedirect returns target if it is a local path, "" otherwise.
func safeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return ""
	}
	return target
}

// exportFilename builds the download name for a dataset export.
func exportFilename(id uuid.UUID, ext string) string {
	return "climate-" + id.String()[:8] + ext
}

// DatasetResponse describes the active dataset.
type DatasetResponse struct {
	ID          uuid.UUID                   `json:"id"`
	Label       string                      `json:"label"`
	LoadedAt    time.Time                   `json:"loadedAt"`
	Records     int                         `json:"records"`
	Countries   int                         `json:"countries"`
	Years       int                         `json:"years"`
	Columns     []string                    `json:"columns"`
	Diagnostics []string                    `json:"diagnostics"`
	Warnings    []core.FieldCoercionWarning `json:"warnings"`
}

// SelectionRequest is the body of POST /api/selection.
// Omitted fields keep their current value.
type SelectionRequest struct {
	Country *string `json:"country"`
	Year    *int    `json:"year"`
}

// UploadResponse is returned after an ingestion.
type UploadResponse struct {
	*core.IngestResult
	Notice *ErrorResponse `json:"notice,omitempty"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status  string                   `json:"status"`
	Dataset bool                     `json:"dataset"`
	Records int                      `json:"records"`
	Ingest  core.IngestLimiterStatus `json:"ingest"`
	Views   core.EngineStats         `json:"views"`
}

// CurrentResponse wraps the snapshot view. Record is null when the
// selection matches nothing.
type CurrentResponse struct {
	Selection core.Selection `json:"selection"`
	Record    *core.Record   `json:"record"`
}

// TimeSeriesResponse wraps the per-country series.
type TimeSeriesResponse struct {
	Country string        `json:"country"`
	Records []core.Record `json:"records"`
}

// CrossSectionResponse wraps the per-year scatter data.
type CrossSectionResponse struct {
	Selection core.Selection  `json:"selection"`
	Pair      core.MetricPair `json:"pair"`
	Records   []core.Record   `json:"records"`
}

// AggregateResponse wraps the global yearly means.
type AggregateResponse struct {
	Metric core.Metric       `json:"metric"`
	Points []core.YearlyMean `json:"points"`
}

// RankingResponse wraps the top-N table.
type RankingResponse struct {
	Selection core.Selection `json:"selection"`
	Field     core.Metric    `json:"field"`
	N         int            `json:"n"`
	Records   []core.Record  `json:"records"`
}

func errorResponse(msg core.UserMessage) *ErrorResponse {
	return &ErrorResponse{Error: msg.Message, Message: msg.Message, Action: msg.Action, Code: msg.Code}
}
