package extractor

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dbsmedya/gostage/internal/graph"
	"github.com/dbsmedya/gostage/internal/sqlutil"
	"github.com/dbsmedya/gostage/internal/types"
)

// destConn is the slice of database/sql used by the writer. Both *sql.DB
// and *sql.Conn satisfy it.
//
// SET FOREIGN_KEY_CHECKS is session-scoped, so production callers should
// hand the writer a *sql.Conn pinned for the whole run; a pooled *sql.DB
// may route the toggle and the merges to different sessions.
type destConn interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// SQLWriter implements DestinationWriter over a destination connection.
type SQLWriter struct {
	conn destConn
}

// NewSQLWriter creates a DestinationWriter backed by the given connection.
func NewSQLWriter(conn destConn) *SQLWriter {
	return &SQLWriter{conn: conn}
}

// TableExists checks information_schema for the table.
func (w *SQLWriter) TableExists(ctx context.Context, table graph.TableRef) (bool, error) {
	query := `SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = ? AND table_name = ?`

	var count int
	if err := w.conn.QueryRowContext(ctx, query, table.Schema, table.Table).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check existence of %s: %w", table, err)
	}
	return count > 0, nil
}

// ExecDDL runs a single DDL statement.
func (w *SQLWriter) ExecDDL(ctx context.Context, ddl string) error {
	if _, err := w.conn.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("DDL failed: %w", err)
	}
	return nil
}

// DropTableIfExists drops the table when present.
func (w *SQLWriter) DropTableIfExists(ctx context.Context, table graph.TableRef) error {
	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", sqlutil.QuoteQualified(table.Schema, table.Table))
	if _, err := w.conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to drop %s: %w", table, err)
	}
	return nil
}

// TruncateTable empties the table.
func (w *SQLWriter) TruncateTable(ctx context.Context, table graph.TableRef) error {
	query := fmt.Sprintf("TRUNCATE TABLE %s", sqlutil.QuoteQualified(table.Schema, table.Table))
	if _, err := w.conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", table, err)
	}
	return nil
}

// BulkInsert appends rows as one multi-row INSERT.
func (w *SQLWriter) BulkInsert(ctx context.Context, table graph.TableRef, cols []string, rows []types.Row) error {
	if len(rows) == 0 {
		return nil
	}

	rowPlaceholder := "(" + sqlutil.Placeholders(len(cols)) + ")"
	placeholders := make([]byte, 0, len(rows)*(len(rowPlaceholder)+2))
	args := make([]interface{}, 0, len(rows)*len(cols))
	for i, row := range rows {
		if len(row) != len(cols) {
			return fmt.Errorf("row %d has %d values, want %d", i, len(row), len(cols))
		}
		if i > 0 {
			placeholders = append(placeholders, ", "...)
		}
		placeholders = append(placeholders, rowPlaceholder...)
		args = append(args, row...)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s",
		sqlutil.QuoteQualified(table.Schema, table.Table),
		sqlutil.QuoteColumns(cols),
		placeholders,
	)

	if _, err := w.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert %d rows into %s: %w", len(rows), table, err)
	}
	return nil
}

// MergeStaged replaces into dest every staged row in one statement. A row
// whose primary key already exists on the destination is replaced whole;
// new keys are inserted.
func (w *SQLWriter) MergeStaged(ctx context.Context, dest, staging graph.TableRef, cols []string) (int64, error) {
	colList := sqlutil.QuoteColumns(cols)
	query := fmt.Sprintf(
		"REPLACE INTO %s (%s) SELECT %s FROM %s",
		sqlutil.QuoteQualified(dest.Schema, dest.Table),
		colList,
		colList,
		sqlutil.QuoteQualified(staging.Schema, staging.Table),
	)

	result, err := w.conn.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to merge %s into %s: %w", staging, dest, err)
	}

	affected, _ := result.RowsAffected()
	return affected, nil
}

// SetForeignKeyChecks toggles FOREIGN_KEY_CHECKS for the session.
func (w *SQLWriter) SetForeignKeyChecks(ctx context.Context, enabled bool) error {
	value := 0
	if enabled {
		value = 1
	}
	query := fmt.Sprintf("SET FOREIGN_KEY_CHECKS = %d", value)
	if _, err := w.conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to set FOREIGN_KEY_CHECKS: %w", err)
	}
	return nil
}
