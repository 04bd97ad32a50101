package extractor

import (
	"fmt"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/gostage/internal/config"
	"github.com/dbsmedya/gostage/internal/graph"
)

// ColumnSelection says which columns of a table the user asked for:
// either every column or an explicit list.
type ColumnSelection struct {
	all     bool
	columns []string
}

// AllColumns selects every source column of a table.
func AllColumns() ColumnSelection {
	return ColumnSelection{all: true}
}

// Columns selects an explicit column list.
func Columns(cols ...string) ColumnSelection {
	return ColumnSelection{columns: cols}
}

// All reports whether the selection means "every source column".
func (cs ColumnSelection) All() bool {
	return cs.all
}

// List returns the explicitly selected columns. Empty when All is true.
func (cs ColumnSelection) List() []string {
	return cs.columns
}

// Selection is an ordered mapping from table name (as configured, bare or
// schema-qualified) to the columns requested for it. Order is preserved so
// plan output lists tables the way the user wrote them.
type Selection struct {
	tables *orderedmap.OrderedMap[string, ColumnSelection]
}

// NewSelection returns an empty Selection.
func NewSelection() *Selection {
	return &Selection{tables: orderedmap.NewOrderedMap[string, ColumnSelection]()}
}

// SelectionFromJob builds a Selection from a job's configured tables.
func SelectionFromJob(job *config.JobConfig) *Selection {
	sel := NewSelection()
	for _, ts := range job.Tables {
		if ts.AllColumns() {
			sel.Set(ts.Table, AllColumns())
		} else {
			sel.Set(ts.Table, Columns(ts.Columns...))
		}
	}
	return sel
}

// Set records the column selection for a table, replacing any prior entry
// but keeping the original position.
func (s *Selection) Set(table string, cs ColumnSelection) {
	s.tables.Set(table, cs)
}

// TableNames returns the selected table names in configuration order.
func (s *Selection) TableNames() []string {
	return s.tables.Keys()
}

// Len returns the number of selected tables.
func (s *Selection) Len() int {
	return s.tables.Len()
}

// For returns the column selection applying to a resolved table. The
// qualified "schema.table" form wins over a bare-name entry. Tables absent
// from the selection (ancestors pulled in by dependency closure) default
// to every column.
func (s *Selection) For(ref graph.TableRef) ColumnSelection {
	if cs, ok := s.tables.Get(ref.String()); ok {
		return cs
	}
	if cs, ok := s.tables.Get(ref.Table); ok {
		return cs
	}
	return AllColumns()
}

func (cs ColumnSelection) String() string {
	if cs.all {
		return "*"
	}
	return fmt.Sprintf("%v", cs.columns)
}
