package masterdata

import (
	"errors"
	"fmt"
)

var (
	// ErrExtractionAmbiguity is returned in strict mode when a row holds several
	// markers or a table name is declared more than once.
	ErrExtractionAmbiguity = errors.New("ambiguous table markers")

	// ErrSchemaMismatch indicates the destination table is missing or its columns
	// do not line up with the extracted header.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrValueConversion indicates a cell of an integer column is not an integer.
	ErrValueConversion = errors.New("value conversion failed")

	// ErrStoreIO wraps failures reported by the relational store.
	ErrStoreIO = errors.New("store io failed")
)

// LoadError describes a failure while loading one table.
type LoadError struct {
	Table  string
	Row    int // 1-based data row, 0 when not row specific
	Column string
	Kind   error
	Err    error
}

func (e *LoadError) Error() string {
	switch {
	case e.Row > 0 && e.Column == "":
		return fmt.Sprintf("load table %q row %d: %v: %v", e.Table, e.Row, e.Kind, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("load table %q row %d column %q: %v: %v", e.Table, e.Row, e.Column, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("load table %q: %v: %v", e.Table, e.Kind, e.Err)
	default:
		return fmt.Sprintf("load table %q: %v", e.Table, e.Kind)
	}
}

// Unwrap exposes both the error kind and the underlying cause to errors.Is/As.
func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newLoadError(table string, kind, err error) *LoadError {
	return &LoadError{Table: table, Kind: kind, Err: err}
}
