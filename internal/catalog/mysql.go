package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// MySQL implements Catalog against a live MySQL connection using
// information_schema queries.
type MySQL struct {
	db *sql.DB
}

// NewMySQL creates a Catalog backed by the given connection.
func NewMySQL(db *sql.DB) *MySQL {
	return &MySQL{db: db}
}

// ListSchemas returns every schema visible to the connection.
func (m *MySQL) ListSchemas(ctx context.Context) ([]string, error) {
	rows, err := m.db.QueryContext(ctx,
		"SELECT schema_name FROM information_schema.schemata ORDER BY schema_name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan schema name: %w", err)
		}
		schemas = append(schemas, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schemas: %w", err)
	}

	return schemas, nil
}

// ListTables returns the base tables of a schema.
func (m *MySQL) ListTables(ctx context.Context, schema string) ([]string, error) {
	rows, err := m.db.QueryContext(ctx,
		"SELECT table_name FROM information_schema.tables WHERE table_schema = ? AND table_type = 'BASE TABLE' ORDER BY table_name",
		schema,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables in %s: %w", schema, err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables in %s: %w", schema, err)
	}

	return tables, nil
}

// TableColumns returns the columns of a table in ordinal position order.
func (m *MySQL) TableColumns(ctx context.Context, schema, table string) ([]Column, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT column_name, data_type, column_type, is_nullable, column_default, extra
		 FROM information_schema.columns
		 WHERE table_schema = ? AND table_name = ?
		 ORDER BY ordinal_position`,
		schema, table,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var (
			col      Column
			nullable string
			def      sql.NullString
		)
		if err := rows.Scan(&col.Name, &col.DataType, &col.ColumnType, &nullable, &def, &col.Extra); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s.%s: %w", schema, table, err)
		}
		col.Nullable = nullable == "YES"
		if def.Valid {
			v := def.String
			col.Default = &v
		}
		cols = append(cols, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns of %s.%s: %w", schema, table, err)
	}

	return cols, nil
}

// TableForeignKeys returns the foreign keys declared on a table.
func (m *MySQL) TableForeignKeys(ctx context.Context, schema, table string) ([]ForeignKey, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT column_name, referenced_table_schema, referenced_table_name, referenced_column_name
		 FROM information_schema.key_column_usage
		 WHERE table_schema = ? AND table_name = ? AND referenced_table_name IS NOT NULL
		 ORDER BY constraint_name, ordinal_position`,
		schema, table,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list foreign keys of %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	var fks []ForeignKey
	for rows.Next() {
		var fk ForeignKey
		if err := rows.Scan(&fk.Column, &fk.RefSchema, &fk.RefTable, &fk.RefColumn); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key of %s.%s: %w", schema, table, err)
		}
		fks = append(fks, fk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating foreign keys of %s.%s: %w", schema, table, err)
	}

	return fks, nil
}

// TableIndexes returns the secondary indexes of a table. The PRIMARY index
// is excluded; multi-column indexes are returned with their columns in
// sequence order.
func (m *MySQL) TableIndexes(ctx context.Context, schema, table string) ([]Index, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT index_name, column_name, non_unique
		 FROM information_schema.statistics
		 WHERE table_schema = ? AND table_name = ? AND index_name <> 'PRIMARY'
		 ORDER BY index_name, seq_in_index`,
		schema, table,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexes of %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	var (
		indexes []Index
		current *Index
	)
	for rows.Next() {
		var (
			name      string
			column    string
			nonUnique int
		)
		if err := rows.Scan(&name, &column, &nonUnique); err != nil {
			return nil, fmt.Errorf("failed to scan index of %s.%s: %w", schema, table, err)
		}

		if current == nil || current.Name != name {
			indexes = append(indexes, Index{Name: name, Unique: nonUnique == 0})
			current = &indexes[len(indexes)-1]
		}
		current.Columns = append(current.Columns, column)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating indexes of %s.%s: %w", schema, table, err)
	}

	return indexes, nil
}

// PrimaryKey returns the primary-key column of a table, or "" when the
// table has none.
func (m *MySQL) PrimaryKey(ctx context.Context, schema, table string) (string, error) {
	var column string
	err := m.db.QueryRowContext(ctx,
		`SELECT column_name
		 FROM information_schema.key_column_usage
		 WHERE table_schema = ? AND table_name = ? AND constraint_name = 'PRIMARY'
		 ORDER BY ordinal_position
		 LIMIT 1`,
		schema, table,
	).Scan(&column)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get primary key of %s.%s: %w", schema, table, err)
	}

	return column, nil
}
