package core

// validation.go resolves the fixed schema against a parsed header.
//
// Header names are matched case-insensitively after cleanup, so "country",
// " Country " and "COUNTRY" all bind to the Country column. When two headers
// collide, the first one wins for lookups.

import (
	"fmt"
	"strings"
)

// HeaderIndex maps lowercased column names to the header name as written.
type HeaderIndex map[string]string

// MakeHeaderIndex creates a HeaderIndex from a header row.
func MakeHeaderIndex(columns []string) HeaderIndex {
	idx := make(HeaderIndex, len(columns))
	for _, c := range columns {
		key := strings.ToLower(CleanCell(c))
		if key == "" {
			continue
		}
		if _, exists := idx[key]; !exists {
			idx[key] = c
		}
	}
	return idx
}

// column returns the header name bound to a schema column, or "" if absent.
func (h HeaderIndex) column(name string) string {
	return h[strings.ToLower(name)]
}

// cell returns the row's value for a schema column, or "" if absent.
func (h HeaderIndex) cell(row RawRow, name string) string {
	col := h.column(name)
	if col == "" {
		return ""
	}
	return row[col]
}

// ValidateHeaders reports the schema columns missing from a header.
// Missing columns are not fatal; the affected fields are simply absent.
func ValidateHeaders(columns []string) []string {
	idx := MakeHeaderIndex(columns)

	var missing []string
	for _, name := range append([]string{ColumnCountry, ColumnYear}, metricNames()...) {
		if idx.column(name) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// headerDiagnostic formats missing columns for a dataset's diagnostics.
func headerDiagnostic(missing []string) string {
	return fmt.Sprintf("missing recognized columns: %s", strings.Join(missing, ", "))
}

func metricNames() []string {
	defs := Metrics()
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = string(d.Metric)
	}
	return names
}
