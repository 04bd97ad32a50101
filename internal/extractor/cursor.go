package extractor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dbsmedya/gostage/internal/graph"
)

// cursorTableDDL holds the incremental sync cursors on the destination, one
// row per (job, table). last_pk is the highest primary-key value known to
// be merged; the next run stages only rows strictly above it.
const cursorTableDDL = `
CREATE TABLE IF NOT EXISTS gostage_sync_cursor (
	job_name VARCHAR(255) NOT NULL,
	table_ref VARCHAR(255) NOT NULL,
	last_pk BIGINT NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	PRIMARY KEY (job_name, table_ref)
) ENGINE=InnoDB;
`

// SQLCursorStore persists cursors in a gostage_sync_cursor table on the
// destination, so resumability survives process restarts and travels with
// the data it describes.
type SQLCursorStore struct {
	db *sql.DB
}

// NewSQLCursorStore creates a cursor store over the destination database.
func NewSQLCursorStore(db *sql.DB) (*SQLCursorStore, error) {
	if db == nil {
		return nil, fmt.Errorf("destination database is nil")
	}
	return &SQLCursorStore{db: db}, nil
}

// InitializeTable creates the cursor table if it doesn't exist.
func (s *SQLCursorStore) InitializeTable(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, cursorTableDDL); err != nil {
		return fmt.Errorf("failed to create cursor table: %w", err)
	}
	return nil
}

// Get returns the stored cursor for (job, table).
func (s *SQLCursorStore) Get(ctx context.Context, job string, table graph.TableRef) (int64, bool, error) {
	query := `SELECT last_pk FROM gostage_sync_cursor WHERE job_name = ? AND table_ref = ?`

	var cursor int64
	err := s.db.QueryRowContext(ctx, query, job, table.String()).Scan(&cursor)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read cursor for %s/%s: %w", job, table, err)
	}
	return cursor, true, nil
}

// Set upserts the cursor for (job, table).
func (s *SQLCursorStore) Set(ctx context.Context, job string, table graph.TableRef, cursor int64) error {
	query := `INSERT INTO gostage_sync_cursor (job_name, table_ref, last_pk)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE last_pk = VALUES(last_pk)`

	if _, err := s.db.ExecContext(ctx, query, job, table.String(), cursor); err != nil {
		return fmt.Errorf("failed to store cursor for %s/%s: %w", job, table, err)
	}
	return nil
}

// Clear removes the cursor for (job, table).
func (s *SQLCursorStore) Clear(ctx context.Context, job string, table graph.TableRef) error {
	query := `DELETE FROM gostage_sync_cursor WHERE job_name = ? AND table_ref = ?`

	if _, err := s.db.ExecContext(ctx, query, job, table.String()); err != nil {
		return fmt.Errorf("failed to clear cursor for %s/%s: %w", job, table, err)
	}
	return nil
}

// MemoryCursorStore keeps cursors in process memory. Used in tests and by
// callers that want every run to start cold.
type MemoryCursorStore struct {
	mu      sync.Mutex
	cursors map[string]int64
}

// NewMemoryCursorStore creates an empty in-memory cursor store.
func NewMemoryCursorStore() *MemoryCursorStore {
	return &MemoryCursorStore{cursors: make(map[string]int64)}
}

func cursorKey(job string, table graph.TableRef) string {
	return job + "\x00" + table.String()
}

// Get returns the stored cursor for (job, table).
func (s *MemoryCursorStore) Get(_ context.Context, job string, table graph.TableRef) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cursor, ok := s.cursors[cursorKey(job, table)]
	return cursor, ok, nil
}

// Set stores the cursor for (job, table).
func (s *MemoryCursorStore) Set(_ context.Context, job string, table graph.TableRef, cursor int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[cursorKey(job, table)] = cursor
	return nil
}

// Clear removes the cursor for (job, table).
func (s *MemoryCursorStore) Clear(_ context.Context, job string, table graph.TableRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cursors, cursorKey(job, table))
	return nil
}
