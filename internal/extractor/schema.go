package extractor

import (
	"fmt"
	"strings"

	"github.com/dbsmedya/gostage/internal/catalog"
	"github.com/dbsmedya/gostage/internal/graph"
	"github.com/dbsmedya/gostage/internal/sqlutil"
)

// stagingPrefix names per-run staging tables alongside their destination
// table. Staging tables are dropped and recreated every run and never
// retain data across runs.
const stagingPrefix = "_stg_"

// StagingTable returns the staging relation for a destination table, in
// the same destination schema.
func StagingTable(table graph.TableRef) graph.TableRef {
	return graph.TableRef{Schema: table.Schema, Table: stagingPrefix + table.Table}
}

// buildDestinationDDL renders CREATE TABLE for the destination copy of a
// table, restricted to the resolved columns.
//
// Source-only affordances are stripped: no column defaults, no
// auto_increment, no foreign keys. The destination is written explicitly
// by the merge, so it never needs to generate values, and FK constraints
// would fight the suspended-checks merge order. Secondary indexes carry
// over except those touching an FK column.
func buildDestinationDDL(table graph.TableRef, cols []catalog.Column, resolved []string, pkColumn string, indexes []catalog.Index, fks []catalog.ForeignKey) string {
	colsByName := make(map[string]catalog.Column, len(cols))
	for _, c := range cols {
		colsByName[c.Name] = c
	}

	var defs []string
	for _, name := range resolved {
		c := colsByName[name]
		defs = append(defs, columnDef(c))
	}

	if pkColumn != "" && contains(resolved, pkColumn) {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", sqlutil.QuoteIdentifier(pkColumn)))
	}

	fkCols := make(map[string]bool, len(fks))
	for _, fk := range fks {
		fkCols[fk.Column] = true
	}

	for _, idx := range indexes {
		if !indexCarries(idx, resolved, fkCols) {
			continue
		}
		kind := "INDEX"
		if idx.Unique {
			kind = "UNIQUE INDEX"
		}
		defs = append(defs, fmt.Sprintf("%s %s (%s)",
			kind, sqlutil.QuoteIdentifier(idx.Name), sqlutil.QuoteColumns(idx.Columns)))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n) ENGINE=InnoDB",
		sqlutil.QuoteQualified(table.Schema, table.Table),
		strings.Join(defs, ",\n  "))
}

// buildStagingDDL renders CREATE TABLE for the staging relation: just the
// resolved columns, no keys and no indexes. Staging only ever receives
// appends and one full read, so constraints would cost without protecting
// anything.
func buildStagingDDL(staging graph.TableRef, cols []catalog.Column, resolved []string) string {
	colsByName := make(map[string]catalog.Column, len(cols))
	for _, c := range cols {
		colsByName[c.Name] = c
	}

	var defs []string
	for _, name := range resolved {
		defs = append(defs, columnDef(colsByName[name]))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n) ENGINE=InnoDB",
		sqlutil.QuoteQualified(staging.Schema, staging.Table),
		strings.Join(defs, ",\n  "))
}

// columnDef renders one column definition without defaults or extras.
func columnDef(c catalog.Column) string {
	colType := c.ColumnType
	if colType == "" {
		colType = c.DataType
	}
	nullability := "NOT NULL"
	if c.Nullable {
		nullability = "NULL"
	}
	return fmt.Sprintf("%s %s %s", sqlutil.QuoteIdentifier(c.Name), colType, nullability)
}

// indexCarries reports whether a source index should be recreated on the
// destination: every indexed column must be in the resolved set and none
// of them may participate in a foreign key.
func indexCarries(idx catalog.Index, resolved []string, fkCols map[string]bool) bool {
	for _, col := range idx.Columns {
		if !contains(resolved, col) {
			return false
		}
		if fkCols[col] {
			return false
		}
	}
	return len(idx.Columns) > 0
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
