package msa

import "fmt"

// Error is implemented by every error the alignment engine reports.
type Error interface {
	error
	IsMSAError()
}

// SchemaError is returned when a required column is absent or a column
// has the wrong kind for the requested operation.
type SchemaError struct {
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("column %q: %s", e.Column, e.Reason)
}

func (e *SchemaError) IsMSAError() {}

// MissingSequences is the schema error for a table without sequences.
func MissingSequences() *SchemaError {
	return &SchemaError{Column: SequenceColumn, Reason: "table must contain a sequence column"}
}

// InvalidParameterError is returned when a parameter is out of range or
// names an unknown option.
type InvalidParameterError struct {
	Name   string
	Value  interface{}
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Name, e.Value, e.Reason)
}

func (e *InvalidParameterError) IsMSAError() {}

// InsufficientDataError is returned when an operation needs more rows
// than the table holds.
type InsufficientDataError struct {
	Op       string
	Rows     int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s needs at least %d sequences, got %d", e.Op, e.Required, e.Rows)
}

func (e *InsufficientDataError) IsMSAError() {}

// ShapeMismatchError is returned when two tables must share a depth but do not.
type ShapeMismatchError struct {
	Op   string
	Want int
	Got  int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %d rows, got %d", e.Op, e.Want, e.Got)
}

func (e *ShapeMismatchError) IsMSAError() {}

// RequireSequences reports a SchemaError for a nil table.
func RequireSequences(t *Table) error {
	if t == nil {
		return MissingSequences()
	}
	return nil
}

// RequireRows reports an InsufficientDataError when t holds fewer than n rows.
func RequireRows(op string, t *Table, n int) error {
	if err := RequireSequences(t); err != nil {
		return err
	}
	if t.Len() < n {
		return &InsufficientDataError{Op: op, Rows: t.Len(), Required: n}
	}
	return nil
}
