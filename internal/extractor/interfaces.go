package extractor

import (
	"context"

	"github.com/dbsmedya/gostage/internal/graph"
	"github.com/dbsmedya/gostage/internal/types"
)

// SourceReader fetches rows from the source database.
type SourceReader interface {
	// FetchChunk returns up to limit rows whose primary key is strictly
	// greater than after, ordered ascending by primary key, along with the
	// maximum key seen in the batch. The returned rows align with cols.
	FetchChunk(ctx context.Context, table graph.TableRef, cols []string, pkColumn string, after int64, limit int) ([]types.Row, int64, error)

	// FetchPage returns up to limit rows starting at offset, ordered by
	// primary key. Used for the non-numeric-key full-reload path.
	FetchPage(ctx context.Context, table graph.TableRef, cols []string, pkColumn string, offset, limit int) ([]types.Row, error)

	// MaxPK returns the maximum primary-key value currently in the table.
	// ok is false when the table is empty.
	MaxPK(ctx context.Context, table graph.TableRef, pkColumn string) (maxPK int64, ok bool, err error)
}

// DestinationWriter applies DDL and data changes to the destination.
type DestinationWriter interface {
	// TableExists reports whether the table exists on the destination.
	TableExists(ctx context.Context, table graph.TableRef) (bool, error)

	// ExecDDL runs a single DDL statement (CREATE TABLE and friends).
	ExecDDL(ctx context.Context, ddl string) error

	// DropTableIfExists drops the table when present.
	DropTableIfExists(ctx context.Context, table graph.TableRef) error

	// TruncateTable empties the table.
	TruncateTable(ctx context.Context, table graph.TableRef) error

	// BulkInsert appends rows to the table over the given columns.
	BulkInsert(ctx context.Context, table graph.TableRef, cols []string, rows []types.Row) error

	// MergeStaged replaces into dest every row of staging over the given
	// columns as one set-oriented statement, returning the affected count.
	MergeStaged(ctx context.Context, dest, staging graph.TableRef, cols []string) (int64, error)

	// SetForeignKeyChecks toggles referential-integrity enforcement for
	// the writer's session.
	SetForeignKeyChecks(ctx context.Context, enabled bool) error
}

// CursorStore persists per-(job, table) incremental sync cursors.
// A cursor is only written after a table's merge commits.
type CursorStore interface {
	// Get returns the stored cursor for (job, table); ok is false when no
	// cursor has been stored.
	Get(ctx context.Context, job string, table graph.TableRef) (cursor int64, ok bool, err error)

	// Set stores the cursor for (job, table), overwriting any prior value.
	Set(ctx context.Context, job string, table graph.TableRef, cursor int64) error

	// Clear removes the cursor for (job, table), forcing a full reload on
	// the next run.
	Clear(ctx context.Context, job string, table graph.TableRef) error
}
