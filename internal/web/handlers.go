package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/ClimateDash/internal/core"
	"github.com/JonMunkholm/ClimateDash/internal/logging"
	"github.com/JonMunkholm/ClimateDash/internal/web/templates"
)

// handleDashboard renders the main page for the current selection. It never
// changes state; the selection form posts to /api/selection.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.renderDashboard(w, r, nil, http.StatusOK)
}

// applySelection merges the submitted values with the current selection.
// Empty values keep the current country or year.
func (s *Server) applySelection(country, yearVal string, hasYearVal bool) error {
	cur := s.service.State().Selection
	if strings.TrimSpace(country) == "" {
		country = cur.Country
	}
	year, hasYear := cur.Year, cur.HasYear
	if hasYearVal {
		y, ok, err := parseYear(yearVal)
		if err != nil {
			return err
		}
		if ok {
			year, hasYear = y, true
		}
	}
	s.service.Select(country, year, hasYear)
	return nil
}

func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, notice *templates.Notice, status int) {
	st := s.service.State()
	opts := s.service.DefaultViewOptions()

	data := templates.DashboardData{
		Index:     st.Index,
		Selection: st.Selection,
		Views:     s.service.Views(opts),
		Options:   opts,
		Metrics:   core.Metrics(),
		Notice:    notice,
	}
	if ds := st.Dataset; ds != nil {
		diags := append([]string(nil), ds.Diagnostics...)
		data.Dataset = &templates.DatasetSummary{
			Label:       ds.SourceLabel,
			Records:     ds.Len(),
			LoadedAt:    ds.LoadedAt,
			Diagnostics: diags,
			Warnings:    len(ds.Warnings),
		}
	}

	var buf bytes.Buffer
	if err := templates.Dashboard(data).Render(r.Context(), &buf); err != nil {
		respondError(w, r, fmt.Errorf("render dashboard: %w", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// handleHealth reports liveness plus ingest and cache counters.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.service.State()
	writeJSON(w, HealthResponse{
		Status:  "ok",
		Dataset: st.Dataset != nil,
		Records: st.Dataset.Len(),
		Ingest:  s.service.LimiterStatus(),
		Views:   s.service.EngineStats(),
	})
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	st := s.service.State()
	ds := st.Dataset
	if ds == nil {
		respondError(w, r, core.ErrNoDataset, http.StatusNotFound)
		return
	}
	warnings := ds.Warnings
	if warnings == nil {
		warnings = []core.FieldCoercionWarning{}
	}
	diags := ds.Diagnostics
	if diags == nil {
		diags = []string{}
	}
	writeJSON(w, DatasetResponse{
		ID:          ds.ID,
		Label:       ds.SourceLabel,
		LoadedAt:    ds.LoadedAt,
		Records:     ds.Len(),
		Countries:   len(st.Index.Countries),
		Years:       len(st.Index.Years),
		Columns:     ds.Columns,
		Diagnostics: diags,
		Warnings:    warnings,
	})
}

func (s *Server) handleDomain(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.State().Index)
}

func (s *Server) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.State().Selection)
}

// handleSetSelection accepts a JSON body or form values. A form carrying a
// local redirect target is answered with 303 to that page.
func (s *Server) handleSetSelection(w http.ResponseWriter, r *http.Request) {
	var country, year, redirect string
	var hasYear bool

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var req SelectionRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
			respondError(w, r, fmt.Errorf("%w: %v", errInvalidParam, err), http.StatusBadRequest)
			return
		}
		if req.Country != nil {
			country = *req.Country
		}
		if req.Year != nil {
			year, hasYear = strconv.Itoa(*req.Year), true
		}
	} else {
		if err := r.ParseForm(); err != nil {
			respondError(w, r, fmt.Errorf("%w: %v", errInvalidParam, err), http.StatusBadRequest)
			return
		}
		country = r.PostForm.Get("country")
		year, hasYear = r.PostForm.Get("year"), r.PostForm.Has("year")
		redirect = safeRedirect(r.PostForm.Get("redirect"))
	}

	if err := s.applySelection(country, year, hasYear); err != nil {
		s.formFailed(w, r, "selection", err, redirect)
		return
	}
	if redirect != "" {
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}
	writeJSON(w, s.service.State().Selection)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, core.Metrics())
}

// views parses view options and computes the views for the current state.
// It writes the error response itself and returns ok=false on bad input.
func (s *Server) views(w http.ResponseWriter, r *http.Request) (core.Views, core.ViewOptions, bool) {
	opts, err := parseViewOptions(r, s.service.DefaultViewOptions())
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return core.Views{}, opts, false
	}
	return s.service.Views(opts), opts, true
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	v, _, ok := s.views(w, r)
	if !ok {
		return
	}
	writeJSON(w, v)
}

func (s *Server) handleCurrentView(w http.ResponseWriter, r *http.Request) {
	v, _, ok := s.views(w, r)
	if !ok {
		return
	}
	writeJSON(w, CurrentResponse{Selection: v.Selection, Record: v.Current})
}

func (s *Server) handleTimeSeriesView(w http.ResponseWriter, r *http.Request) {
	v, _, ok := s.views(w, r)
	if !ok {
		return
	}
	writeJSON(w, TimeSeriesResponse{Country: v.Selection.Country, Records: v.TimeSeries})
}

func (s *Server) handleCrossSectionView(w http.ResponseWriter, r *http.Request) {
	v, opts, ok := s.views(w, r)
	if !ok {
		return
	}
	writeJSON(w, CrossSectionResponse{Selection: v.Selection, Pair: opts.Pair, Records: v.CrossSection})
}

func (s *Server) handleAggregateView(w http.ResponseWriter, r *http.Request) {
	v, opts, ok := s.views(w, r)
	if !ok {
		return
	}
	writeJSON(w, AggregateResponse{Metric: opts.Aggregate, Points: v.Aggregate})
}

func (s *Server) handleRankingView(w http.ResponseWriter, r *http.Request) {
	v, opts, ok := s.views(w, r)
	if !ok {
		return
	}
	writeJSON(w, RankingResponse{Selection: v.Selection, Field: opts.RankBy, N: opts.RankingSize, Records: v.Ranking})
}

// handleUpload ingests a multipart CSV upload. With a "redirect" form field
// (the dashboard form) it answers with a redirect or the re-rendered page;
// otherwise with JSON.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isBodyTooLarge(err) {
			err = fmt.Errorf("%w: %v", core.ErrFileTooLarge, err)
		} else {
			err = fmt.Errorf("%w: %v", errInvalidParam, err)
		}
		respondError(w, r, err, statusFor(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	redirect := safeRedirect(r.FormValue("redirect"))

	file, header, err := r.FormFile("file")
	if err != nil {
		s.formFailed(w, r, "upload", errNoFile, redirect)
		return
	}
	defer file.Close()

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.Ingest(ctx, file, header.Size, header.Filename)
	switch {
	case errors.Is(err, core.ErrEmptyDataset):
		msg := core.MapError(err)
		logging.FromContext(r.Context()).Info("upload produced an empty dataset", "file", header.Filename)
		if redirect != "" {
			s.renderDashboard(w, r, &templates.Notice{Message: msg.Message, Action: msg.Action, Code: msg.Code}, http.StatusOK)
			return
		}
		writeJSON(w, UploadResponse{IngestResult: result, Notice: errorResponse(msg)})
	case err != nil:
		s.formFailed(w, r, "upload", err, redirect)
	case redirect != "":
		http.Redirect(w, r, redirect, http.StatusSeeOther)
	default:
		writeJSON(w, UploadResponse{IngestResult: result})
	}
}

// formFailed answers a failed form post. Form submissions get the dashboard
// back with the message; API clients get the usual error response.
func (s *Server) formFailed(w http.ResponseWriter, r *http.Request, action string, err error, redirect string) {
	status := statusFor(err)
	if redirect == "" {
		respondError(w, r, err, status)
		return
	}
	msg := core.MapError(err)
	logging.FromContext(r.Context()).Warn(action+" failed", "error", err, "code", msg.Code)
	s.renderDashboard(w, r, &templates.Notice{Message: msg.Message, Action: msg.Action, Code: msg.Code}, status)
}

func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}

// handleExportParquet downloads the dataset as Parquet. The file is built in
// memory first so a failure can still be reported with a proper status.
func (s *Server) handleExportParquet(w http.ResponseWriter, r *http.Request) {
	ds := s.service.State().Dataset
	if ds == nil {
		respondError(w, r, core.ErrNoDataset, http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := s.service.ExportParquet(&buf); err != nil {
		respondError(w, r, fmt.Errorf("export parquet: %w", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.apache.parquet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename(ds.ID, ".parquet")+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

// handleExportCSV streams the dataset in the recognized column layout.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	ds := s.service.State().Dataset
	if ds == nil {
		respondError(w, r, core.ErrNoDataset, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename(ds.ID, ".csv")+`"`)
	if err := s.service.ExportCSV(w); err != nil {
		logging.FromContext(r.Context()).Error("csv export failed", "error", err)
	}
}
