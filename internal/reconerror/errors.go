// Package reconerror defines the typed errors surfaced by the reconciliation
// pipeline. Structural errors (missing tables, unresolved columns) are fatal
// for the selected mode and reported before any row is processed; per-row
// errors are recovered locally and only counted.
package reconerror

import (
	"fmt"
	"strings"
)

// MissingTableError reports that a table required for the selected mode was
// not supplied. No partial run is produced.
type MissingTableError struct {
	Source string
	Mode   string
}

func (e *MissingTableError) Error() string {
	return fmt.Sprintf("mode %s requires the %s table, which was not supplied", e.Mode, e.Source)
}

// MissingColumnError reports that a table lacks columns needed for the
// selected mode. It names every unresolved logical field so the operator can
// fix the upload in one pass.
type MissingColumnError struct {
	Source string
	Fields []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s table: required columns not resolved: %s",
		e.Source, strings.Join(e.Fields, ", "))
}

// RecordError reports a failure while classifying a single row. The row is
// skipped and counted; the run continues.
type RecordError struct {
	Source string
	Row    int
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s table row %d: %v", e.Source, e.Row, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
