package extractor

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dbsmedya/gostage/internal/graph"
	"github.com/dbsmedya/gostage/internal/sqlutil"
	"github.com/dbsmedya/gostage/internal/types"
)

// SQLReader implements SourceReader over a live source connection.
type SQLReader struct {
	db *sql.DB
}

// NewSQLReader creates a SourceReader backed by the given source database.
func NewSQLReader(db *sql.DB) *SQLReader {
	return &SQLReader{db: db}
}

// FetchChunk selects the next keyset batch: rows with pk strictly greater
// than after, ascending, capped at limit. The second return value is the
// maximum key in the batch, only meaningful when rows were returned.
func (r *SQLReader) FetchChunk(ctx context.Context, table graph.TableRef, cols []string, pkColumn string, after int64, limit int) ([]types.Row, int64, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s > ? ORDER BY %s ASC LIMIT ?",
		sqlutil.QuoteColumns(cols),
		sqlutil.QuoteQualified(table.Schema, table.Table),
		sqlutil.QuoteIdentifier(pkColumn),
		sqlutil.QuoteIdentifier(pkColumn),
	)

	rows, err := r.db.QueryContext(ctx, query, after, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch chunk from %s: %w", table, err)
	}
	defer rows.Close()

	pkIndex := indexOf(cols, pkColumn)
	if pkIndex < 0 {
		return nil, 0, fmt.Errorf("primary key %q missing from column list for %s", pkColumn, table)
	}

	var (
		out   []types.Row
		maxPK int64
	)
	for rows.Next() {
		row, err := scanRow(rows, len(cols))
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan row from %s: %w", table, err)
		}

		pk, ok := types.ToInt64(row[pkIndex])
		if !ok {
			return nil, 0, fmt.Errorf("non-integer primary key value in %s.%s", table, pkColumn)
		}
		if pk > maxPK || len(out) == 0 {
			maxPK = pk
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows of %s: %w", table, err)
	}

	return out, maxPK, nil
}

// FetchPage selects rows by offset pagination, ordered by primary key so
// pages are stable within a run.
func (r *SQLReader) FetchPage(ctx context.Context, table graph.TableRef, cols []string, pkColumn string, offset, limit int) ([]types.Row, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY %s ASC LIMIT ? OFFSET ?",
		sqlutil.QuoteColumns(cols),
		sqlutil.QuoteQualified(table.Schema, table.Table),
		sqlutil.QuoteIdentifier(pkColumn),
	)

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page from %s: %w", table, err)
	}
	defer rows.Close()

	var out []types.Row
	for rows.Next() {
		row, err := scanRow(rows, len(cols))
		if err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", table, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows of %s: %w", table, err)
	}

	return out, nil
}

// MaxPK returns MAX(pk) over the whole table. ok is false for an empty
// table (the aggregate comes back NULL).
func (r *SQLReader) MaxPK(ctx context.Context, table graph.TableRef, pkColumn string) (int64, bool, error) {
	query := fmt.Sprintf(
		"SELECT MAX(%s) FROM %s",
		sqlutil.QuoteIdentifier(pkColumn),
		sqlutil.QuoteQualified(table.Schema, table.Table),
	)

	var max sql.NullInt64
	if err := r.db.QueryRowContext(ctx, query).Scan(&max); err != nil {
		return 0, false, fmt.Errorf("failed to read max %s of %s: %w", pkColumn, table, err)
	}
	if !max.Valid {
		return 0, false, nil
	}
	return max.Int64, true, nil
}

// scanRow scans the current result row into a Row, normalizing []byte
// values to string so staged values round-trip as text.
func scanRow(rows *sql.Rows, width int) (types.Row, error) {
	values := make(types.Row, width)
	ptrs := make([]interface{}, width)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	for i, v := range values {
		if b, ok := v.([]byte); ok {
			values[i] = string(b)
		}
	}
	return values, nil
}

func indexOf(list []string, want string) int {
	for i, s := range list {
		if s == want {
			return i
		}
	}
	return -1
}
