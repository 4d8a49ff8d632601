package core

import (
	"errors"
	"fmt"
)

// Ingestion errors. Structural failures leave the active dataset untouched.
var (
	// ErrEmptyInput is returned when the source text is blank.
	ErrEmptyInput = errors.New("empty file: no input text")

	// ErrUnparseableInput is returned when the text is not delimited data at all.
	ErrUnparseableInput = errors.New("invalid csv: input is not parseable")

	// ErrEmptyDataset is returned when parsing succeeded but no usable row remains.
	// It is non-fatal: callers surface it as a "no data" state.
	ErrEmptyDataset = errors.New("empty dataset: no usable rows")

	// ErrNoDataset is returned by operations that need a loaded dataset.
	ErrNoDataset = errors.New("no dataset loaded")

	// ErrFileTooLarge is returned when the source exceeds the configured size.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnknownMetric is returned when a metric name is not recognized.
	ErrUnknownMetric = errors.New("unknown metric")
)

// UnparseableInputError carries the line where parsing gave up.
type UnparseableInputError struct {
	Line int
	Err  error
}

func (e *UnparseableInputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%v: line %d: %v", ErrUnparseableInput, e.Line, e.Err)
	}
	return fmt.Sprintf("%v: %v", ErrUnparseableInput, e.Err)
}

// Is makes errors.Is(err, ErrUnparseableInput) hold.
func (e *UnparseableInputError) Is(target error) bool {
	return target == ErrUnparseableInput
}

func (e *UnparseableInputError) Unwrap() error {
	return e.Err
}

// FieldCoercionWarning records a cell that could not be coerced to a number.
// It is collected, never returned as an error.
type FieldCoercionWarning struct {
	Row   int    `json:"row"` // 1-based data row (header excluded)
	Field string `json:"field"`
	Value string `json:"value"`
}

func (w FieldCoercionWarning) String() string {
	return fmt.Sprintf("row %d: %s: cannot parse %q as a number", w.Row, w.Field, w.Value)
}
