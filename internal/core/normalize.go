package core

import (
	"strings"
)

// Normalize coerces raw rows into records.
//
// Recognized metric cells are parsed as numbers; a cell that cannot be parsed
// becomes NaN and produces a FieldCoercionWarning, but the row is kept. Empty
// cells are NaN without a warning. Country is trimmed and kept even when empty.
// Rows with no country, no year and no finite metric are dropped.
//
// Returns ErrEmptyDataset (with the empty slice and any warnings) if no row
// survives. Output order matches input order.
func Normalize(table *RawTable) ([]Record, []FieldCoercionWarning, error) {
	if table == nil || len(table.Rows) == 0 {
		return []Record{}, nil, ErrEmptyDataset
	}

	idx := MakeHeaderIndex(table.Columns)
	metrics := Metrics()

	recognized := map[string]bool{
		idx.column(ColumnCountry): true,
		idx.column(ColumnYear):    true,
	}
	for _, def := range metrics {
		recognized[idx.column(string(def.Metric))] = true
	}

	records := make([]Record, 0, len(table.Rows))
	var warnings []FieldCoercionWarning

	for i, raw := range table.Rows {
		rowNum := i + 1
		rec := Record{Country: strings.TrimSpace(idx.cell(raw, ColumnCountry))}

		if cell := idx.cell(raw, ColumnYear); cell != "" {
			rec.Year, rec.HasYear = ToYear(cell)
			if !rec.HasYear {
				warnings = append(warnings, FieldCoercionWarning{Row: rowNum, Field: ColumnYear, Value: cell})
			}
		}

		finite := 0
		for _, def := range metrics {
			cell := idx.cell(raw, string(def.Metric))
			v, ok := ToNumber(cell)
			if ok {
				finite++
			} else if strings.TrimSpace(cell) != "" {
				warnings = append(warnings, FieldCoercionWarning{Row: rowNum, Field: string(def.Metric), Value: cell})
			}
			rec.setValue(def.Metric, v)
		}

		for name, cell := range raw {
			if recognized[name] {
				continue
			}
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[name] = cell
		}

		if rec.Country == "" && !rec.HasYear && finite == 0 {
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return records, warnings, ErrEmptyDataset
	}
	return records, warnings, nil
}
