// Package templates holds the templ components of the dashboard.
//
// The *_templ.go files are generated from the .templ sources with
// `templ generate`; edit the .templ files, not the generated code.
package templates

import (
	"math"
	"strconv"
	"time"

	"github.com/JonMunkholm/ClimateDash/internal/core"
)

// DatasetSummary describes the loaded dataset in the page header.
type DatasetSummary struct {
	Label       string
	Records     int
	LoadedAt    time.Time
	Diagnostics []string
	Warnings    int
}

// Notice is a message shown above the dashboard.
type Notice struct {
	Message string
	Action  string
	Code    string
}

// DashboardData is everything the dashboard page renders.
type DashboardData struct {
	Dataset   *DatasetSummary // nil before the first ingestion
	Index     core.DomainIndex
	Selection core.Selection
	Views     core.Views
	Options   core.ViewOptions
	Metrics   []core.MetricDef
	Notice    *Notice
}

const missing = "\u2013"

func hasRows(idx core.DomainIndex) bool {
	return len(idx.Countries) > 0 || len(idx.Years) > 0
}

func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return missing
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// meanText shows years without a single finite contributor as missing.
func meanText(ym core.YearlyMean) string {
	if ym.Count == 0 {
		return missing
	}
	return strconv.FormatFloat(ym.Mean, 'f', 2, 64)
}

func metricLabel(m core.Metric) string {
	if def, ok := core.LookupMetric(string(m)); ok {
		return def.Label
	}
	return string(m)
}

func unitSuffix(m core.MetricDef) string {
	if m.Unit == "" {
		return ""
	}
	return " (" + m.Unit + ")"
}
