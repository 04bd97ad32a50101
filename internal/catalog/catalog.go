// Package catalog exposes per-table schema metadata for a live database.
//
// The Catalog interface decouples the dependency graph and the extractor
// from any real database connection; the MySQL implementation reads
// information_schema, and Memory provides an in-process fake for tests.
package catalog

import (
	"context"
	"strings"
)

// Column describes a single table column.
type Column struct {
	Name       string
	DataType   string // base type, e.g. "bigint"
	ColumnType string // full type, e.g. "bigint(20) unsigned"
	Nullable   bool
	Default    *string // nil when the column has no default
	Extra      string  // e.g. "auto_increment"
}

// numericTypes are the integer column types usable as incremental cursors.
var numericTypes = map[string]bool{
	"tinyint":   true,
	"smallint":  true,
	"mediumint": true,
	"int":       true,
	"integer":   true,
	"bigint":    true,
}

// IsNumeric reports whether the column's type supports keyset pagination.
// Only integer types qualify; everything else forces the full-reload path.
func (c Column) IsNumeric() bool {
	return numericTypes[strings.ToLower(c.DataType)]
}

// HasDefault reports whether the column is populated without an explicit
// value: either a literal/server default or an auto_increment counter.
func (c Column) HasDefault() bool {
	if c.Default != nil {
		return true
	}
	return strings.Contains(strings.ToLower(c.Extra), "auto_increment")
}

// ForeignKey describes one foreign-key column reference on a table.
type ForeignKey struct {
	Column    string // FK column on the child table
	RefSchema string // referenced (parent) schema
	RefTable  string // referenced (parent) table
	RefColumn string // referenced column on the parent
}

// Index describes a secondary index on a table. The primary key is not
// reported as an index.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// Catalog exposes schema metadata for a live database.
type Catalog interface {
	// ListSchemas returns every schema visible to the connection.
	ListSchemas(ctx context.Context) ([]string, error)

	// ListTables returns the base tables of a schema.
	ListTables(ctx context.Context, schema string) ([]string, error)

	// TableColumns returns the columns of a table in ordinal position order.
	TableColumns(ctx context.Context, schema, table string) ([]Column, error)

	// TableForeignKeys returns the foreign keys declared on a table.
	TableForeignKeys(ctx context.Context, schema, table string) ([]ForeignKey, error)

	// TableIndexes returns the secondary indexes of a table.
	TableIndexes(ctx context.Context, schema, table string) ([]Index, error)

	// PrimaryKey returns the primary-key column of a table, or "" when the
	// table has none. Multi-column primary keys report the first column.
	PrimaryKey(ctx context.Context, schema, table string) (string, error)
}
