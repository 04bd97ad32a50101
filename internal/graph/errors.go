package graph

import (
	"fmt"
	"strings"
)

// NotFoundError is returned when a bare table name matches no scanned table.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("table %q not found in any scanned schema; specify schema.table", e.Name)
}

// AmbiguousError is returned when a bare table name matches tables in more
// than one schema. Candidates lists every match, sorted.
type AmbiguousError struct {
	Name       string
	Candidates []TableRef
}

func (e *AmbiguousError) Error() string {
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = c.String()
	}
	return fmt.Sprintf("table name %q is ambiguous across schemas: %s; specify schema.table",
		e.Name, strings.Join(names, ", "))
}

// CycleError is returned when the requested subset contains a foreign-key
// cycle. Tables lists every member of the undischarged remainder, sorted:
// every table that is part of a cycle or blocked behind one.
type CycleError struct {
	Tables []TableRef
}

func (e *CycleError) Error() string {
	names := make([]string, len(e.Tables))
	for i, t := range e.Tables {
		names[i] = t.String()
	}
	return fmt.Sprintf("cycle detected in foreign-key graph involving: %s", strings.Join(names, ", "))
}
