package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownColumn is returned when a column name is not present in the table.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrNotNumeric is returned when a numeric operation targets a text column.
	ErrNotNumeric = errors.New("column is not numeric")
	// ErrNotCategorical is returned when a frequency count targets a numeric column.
	ErrNotCategorical = errors.New("column is not categorical")
)

// ParseError reports raw input that cannot be interpreted as a table.
// No partial table accompanies it.
type ParseError struct {
	Line int // 1-based input line, 0 when unknown
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error on line %d: %s", e.Line, msg)
	}
	return "parse error: " + msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// InsufficientDataError reports an artifact that needs more numeric columns than are available.
type InsufficientDataError struct {
	Artifact string
	Have     int
	Need     int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s needs at least %d numeric columns, have %d", e.Artifact, e.Need, e.Have)
}

// EmptyColumnError reports a numeric column without any non-missing values.
type EmptyColumnError struct {
	Column string
}

func (e *EmptyColumnError) Error() string {
	return fmt.Sprintf("column %q has no non-missing values", e.Column)
}

func unknownColumn(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}
