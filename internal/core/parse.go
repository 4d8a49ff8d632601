package core

// parse.go turns delimited text into header-keyed rows.
//
// Parsing follows the RFC 4180 dialect implemented by encoding/csv: quoted
// fields, delimiters and newlines inside quotes, and doubled quotes. Problems
// confined to a single data row are reported as diagnostics and parsing moves
// on; only a broken header, or input where no data line parses at all, is an
// error.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Parse splits CSV text into rows keyed by the header names.
//
// Returns ErrEmptyInput if the text is blank and an *UnparseableInputError if
// the header cannot be read. Fully blank rows are dropped.
func Parse(text string) (*RawTable, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, unparseable(err)
	}

	columns := make([]string, len(header))
	named := 0
	for i, h := range header {
		columns[i] = cleanHeader(h)
		if columns[i] != "" {
			named++
		}
	}
	if named == 0 {
		return nil, &UnparseableInputError{Line: 1, Err: errors.New("header row has no column names")}
	}

	table := &RawTable{Columns: columns}
	failed := 0
	firstFailure := 0

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, unparseable(err)
			}
			failed++
			if firstFailure == 0 {
				firstFailure = pe.StartLine
			}
			table.Diagnostics = append(table.Diagnostics, fmt.Sprintf("line %d: %v", pe.StartLine, pe.Err))
			continue
		}

		if isBlank(record) {
			continue
		}

		line, _ := r.FieldPos(0)
		if len(record) != len(columns) {
			table.Diagnostics = append(table.Diagnostics,
				fmt.Sprintf("line %d: expected %d fields, got %d", line, len(columns), len(record)))
		}

		row := make(RawRow, len(columns))
		for i, name := range columns {
			if name == "" || i >= len(record) {
				continue
			}
			row[name] = record[i]
		}
		table.Rows = append(table.Rows, row)
	}

	if len(table.Rows) == 0 && failed > 0 {
		return nil, &UnparseableInputError{
			Line: firstFailure,
			Err:  fmt.Errorf("none of %d data rows could be parsed", failed),
		}
	}

	return table, nil
}

// unparseable wraps a csv error with the line it occurred on.
func unparseable(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &UnparseableInputError{Line: pe.StartLine, Err: pe.Err}
	}
	return &UnparseableInputError{Err: err}
}
