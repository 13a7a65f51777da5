// Package models provides the data structures shared across the
// reconciliation pipeline.
package models

import (
	"github.com/shopspring/decimal"
)

// Source identifies the role a dataset plays in a reconciliation run.
// Roles reflect join direction, not fixed identity: the job tracker drives
// the primary side, the time-and-materials report the secondary side, and
// the accounting ledger the tertiary side.
type Source string

const (
	SourcePrimary   Source = "primary"
	SourceSecondary Source = "secondary"
	SourceTertiary  Source = "tertiary"
)

// LogicalField names a semantically-typed column independent of the header
// spelling a particular upload uses. The column resolver maps these to
// physical headers.
type LogicalField string

const (
	FieldJobKey     LogicalField = "job_key"
	FieldContractor LogicalField = "contractor"
	FieldCost       LogicalField = "cost"
	FieldDate       LogicalField = "date"
	FieldPOType     LogicalField = "po_type"
	FieldStatus     LogicalField = "status"
	FieldClient     LogicalField = "client"
)

// Record is one row of an input table: the raw cells by physical header,
// plus the canonical fields derived during normalization.
type Record struct {
	// Row is the 1-based data row number in the source table, for
	// operator-facing diagnostics.
	Row int

	// Fields maps physical header to the raw cell value.
	Fields map[string]string

	// JobKey is the normalized cross-dataset identifier, or empty when the
	// source value failed normalization.
	JobKey string

	// Contractor is the raw contractor name as entered, possibly blank.
	Contractor string

	// Cost is the monetary value; unparseable and missing values normalize
	// to zero, which is semantically significant downstream.
	Cost decimal.Decimal

	// Period is the month-year bucket derived from the record's date, or
	// the "No Date" sentinel.
	Period string
}

// Field returns the raw cell value for a physical header, or "" when the
// row has no such cell.
func (r *Record) Field(header string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[header]
}

// Table is one parsed dataset: its headers, its rows in upload order, and
// the column map discovered by the resolver. Tables are built once per
// upload and are read-only for the duration of a run.
type Table struct {
	Source  Source
	Headers []string

	// Columns maps logical field to the physical header it resolved to.
	// A table is usable by a mode only if every field that mode requires
	// is present here.
	Columns map[LogicalField]string

	Records []Record
}

// Column returns the physical header backing a logical field, or "" when
// the field did not resolve.
func (t *Table) Column(field LogicalField) string {
	return t.Columns[field]
}

// HasColumns reports whether every given logical field resolved to a
// physical column.
func (t *Table) HasColumns(fields ...LogicalField) bool {
	for _, f := range fields {
		if t.Columns[f] == "" {
			return false
		}
	}
	return true
}
