package dss

import (
	"fmt"
	"strings"
)

// NotFoundError reports a worksheet, column or template that could not be
// located, along with the names that were available.
type NotFoundError struct {
	Kind      string // "worksheet", "column" or "template"
	Name      string
	Sheet     string // set for columns
	Available []string
	// Err is an optional sentinel the lookup failure also reports.
	Err error
}

func (e *NotFoundError) Error() string {
	where := ""
	if e.Sheet != "" {
		where = fmt.Sprintf(" in worksheet %q", e.Sheet)
	}
	return fmt.Sprintf("%s %q not found%s; available: [%s]",
		e.Kind, e.Name, where, strings.Join(e.Available, ", "))
}

func (e *NotFoundError) Unwrap() error { return e.Err }

func worksheetNotFound(name string, wb *Workbook) *NotFoundError {
	return &NotFoundError{Kind: "worksheet", Name: name, Available: wb.SheetNames()}
}

func columnNotFound(name string, t *Table) *NotFoundError {
	return &NotFoundError{Kind: "column", Name: name, Sheet: t.Name, Available: append([]string(nil), t.Headers...)}
}

// NoDataError reports that no row survived the exclusion filter.
// It is terminal for a run but not a malfunction.
type NoDataError struct {
	Sheet   string
	Column  string
	Exclude string
	Total   int
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no rows in worksheet %q have a %s value other than %q (%d rows scanned)",
		e.Sheet, e.Column, e.Exclude, e.Total)
}

// TemplateMissingError reports that the template chosen for a group was not
// supplied.
type TemplateMissingError struct {
	Group    string
	Template string
}

func (e *TemplateMissingError) Error() string {
	return fmt.Sprintf("template %q required by %s is not available", e.Template, e.Group)
}
