// Package extractor moves table data from source to destination with a
// stage-then-merge pipeline: rows are copied chunk-wise into a per-table
// staging relation, merged into the destination in one set-oriented
// REPLACE, and an incremental cursor is advanced only after the merge
// commits.
package extractor

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dbsmedya/gostage/internal/catalog"
	"github.com/dbsmedya/gostage/internal/config"
	"github.com/dbsmedya/gostage/internal/graph"
	"github.com/dbsmedya/gostage/internal/logger"
)

// pkSentinel seeds the keyset cursor below every valid key, so a cold
// start stages the whole table.
const pkSentinel = math.MinInt64

// Extractor executes sync runs strictly in plan order, single-threaded.
// Callers must guarantee at most one concurrent run per (job, destination);
// the extractor assumes exclusive ownership of the staging relations and
// cursor entries for the run's duration.
type Extractor struct {
	catalog    catalog.Catalog
	reader     SourceReader
	writer     DestinationWriter
	cursors    CursorStore
	processing config.ProcessingConfig
	logger     *logger.Logger
}

// New creates an Extractor. The catalog and reader describe the source;
// the writer and cursor store belong to the destination.
func New(
	cat catalog.Catalog,
	reader SourceReader,
	writer DestinationWriter,
	cursors CursorStore,
	processing config.ProcessingConfig,
	log *logger.Logger,
) (*Extractor, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog is nil")
	}
	if reader == nil {
		return nil, fmt.Errorf("source reader is nil")
	}
	if writer == nil {
		return nil, fmt.Errorf("destination writer is nil")
	}
	if cursors == nil {
		return nil, fmt.Errorf("cursor store is nil")
	}
	if processing.ChunkSize <= 0 {
		processing.ChunkSize = config.DefaultConfig().Processing.ChunkSize
	}
	if log == nil {
		log = logger.NewDefault()
	}

	return &Extractor{
		catalog:    cat,
		reader:     reader,
		writer:     writer,
		cursors:    cursors,
		processing: processing,
		logger:     log,
	}, nil
}

// RunSync executes the plan table-by-table. Referential-integrity checks
// on the destination are suspended for the whole plan and restored after
// the last table: per-table ordering alone cannot guarantee a parent row
// is visible before a dependent child merges when the parent was already
// fully synced in a prior run.
//
// Any failure aborts the remaining tables. Tables already merged keep
// their advanced cursors, so re-invocation resumes unfinished tables and
// re-merges finished ones as no-ops.
func (e *Extractor) RunSync(ctx context.Context, job string, plan []graph.TableRef, sel *Selection, fullRefresh bool) (*RunReport, error) {
	startTime := time.Now()
	log := e.logger.WithJob(job)

	report := &RunReport{
		Job:       job,
		StartedAt: startTime,
	}
	if sel == nil {
		sel = NewSelection()
	}

	log.Infof("Starting sync run for %d tables", len(plan))

	if err := e.writer.SetForeignKeyChecks(ctx, false); err != nil {
		return report, fmt.Errorf("failed to suspend foreign key checks: %w", err)
	}
	defer func() {
		if err := e.writer.SetForeignKeyChecks(ctx, true); err != nil {
			log.Warnf("Failed to restore foreign key checks: %v", err)
		}
	}()

	var runErr error
	for i, table := range plan {
		result := e.syncTable(ctx, job, table, sel.For(table), fullRefresh, log)
		report.Tables = append(report.Tables, result)

		if result.Err != nil {
			runErr = fmt.Errorf("table %s: %w", table, result.Err)
			// remaining tables are not attempted
			for _, skipped := range plan[i+1:] {
				report.Tables = append(report.Tables, TableResult{
					Table: skipped.String(),
					State: StatePending,
				})
			}
			break
		}
	}

	report.Duration = time.Since(startTime)
	report.Success = runErr == nil

	if report.Success {
		log.Infof("Sync run complete: %d tables, %d rows staged, %d rows merged, duration: %s",
			report.TablesDone(), report.RowsStaged(), report.RowsMerged(), report.Duration)
	} else {
		log.Errorf("Sync run aborted after %d of %d tables: %v",
			report.TablesDone(), len(plan), runErr)
	}

	return report, runErr
}

// syncTable runs the per-table pipeline: resolve columns, materialize
// destination and staging, copy chunks, merge, advance the cursor.
func (e *Extractor) syncTable(ctx context.Context, job string, table graph.TableRef, sel ColumnSelection, fullRefresh bool, log *logger.Logger) TableResult {
	startTime := time.Now()
	tlog := log.WithTable(table.String())

	result := TableResult{
		Table: table.String(),
		State: StatePending,
	}
	fail := func(err error) TableResult {
		result.State = StateFailed
		result.Err = err
		result.Duration = time.Since(startTime)
		tlog.Errorf("Table sync failed: %v", err)
		return result
	}

	cols, err := e.catalog.TableColumns(ctx, table.Schema, table.Table)
	if err != nil {
		return fail(fmt.Errorf("failed to read columns: %w", err))
	}
	pkColumn, err := e.catalog.PrimaryKey(ctx, table.Schema, table.Table)
	if err != nil {
		return fail(fmt.Errorf("failed to read primary key: %w", err))
	}
	if pkColumn == "" {
		return fail(fmt.Errorf("table %s has no primary key", table))
	}

	resolved, err := ResolveColumns(table, cols, pkColumn, sel)
	if err != nil {
		return fail(err)
	}

	pkNumeric := false
	for _, c := range cols {
		if c.Name == pkColumn {
			pkNumeric = c.IsNumeric()
			break
		}
	}

	if err := e.ensureDestination(ctx, table, cols, resolved, pkColumn, tlog); err != nil {
		return fail(err)
	}

	staging := StagingTable(table)
	if err := e.writer.DropTableIfExists(ctx, staging); err != nil {
		return fail(err)
	}
	if err := e.writer.ExecDDL(ctx, buildStagingDDL(staging, cols, resolved)); err != nil {
		return fail(fmt.Errorf("failed to create staging table %s: %w", staging, err))
	}

	result.State = StateStaging
	if pkNumeric {
		result.RowsStaged, result.Chunks, err = e.stageKeyset(ctx, job, table, staging, resolved, pkColumn, fullRefresh, tlog)
	} else {
		tlog.Debugf("Primary key %s is not numeric; staging full reload", pkColumn)
		result.RowsStaged, result.Chunks, err = e.stagePaged(ctx, table, staging, resolved, pkColumn, tlog)
	}
	if err != nil {
		return fail(err)
	}

	result.State = StateMerging
	merged, err := e.writer.MergeStaged(ctx, table, staging, resolved)
	if err != nil {
		return fail(&ConstraintError{Table: table.String(), Err: err})
	}
	result.RowsMerged = merged

	if err := e.writer.TruncateTable(ctx, staging); err != nil {
		return fail(fmt.Errorf("failed to truncate staging table %s: %w", staging, err))
	}

	if err := e.advanceCursor(ctx, job, table, pkColumn, pkNumeric); err != nil {
		return fail(err)
	}

	result.State = StateDone
	result.Duration = time.Since(startTime)
	tlog.Infof("Table synced: %d rows staged in %d chunks, %d rows merged, duration: %s",
		result.RowsStaged, result.Chunks, result.RowsMerged, result.Duration)
	return result
}

// ensureDestination creates the destination table when absent. An existing
// table is reused unmodified; schema drift is the operator's problem, not
// a migration trigger.
func (e *Extractor) ensureDestination(ctx context.Context, table graph.TableRef, cols []catalog.Column, resolved []string, pkColumn string, tlog *logger.Logger) error {
	exists, err := e.writer.TableExists(ctx, table)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	indexes, err := e.catalog.TableIndexes(ctx, table.Schema, table.Table)
	if err != nil {
		return fmt.Errorf("failed to read indexes: %w", err)
	}
	fks, err := e.catalog.TableForeignKeys(ctx, table.Schema, table.Table)
	if err != nil {
		return fmt.Errorf("failed to read foreign keys: %w", err)
	}

	tlog.Infof("Creating destination table %s", table)
	ddl := buildDestinationDDL(table, cols, resolved, pkColumn, indexes, fks)
	if err := e.writer.ExecDDL(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create destination table %s: %w", table, err)
	}
	return nil
}

// stageKeyset copies rows in fixed-size batches keyed strictly above a
// running cursor, seeded from the stored cursor (or the sentinel for a
// cold start or explicit full refresh). The loop stops on the first empty
// batch; cancellation is honored at chunk boundaries only.
func (e *Extractor) stageKeyset(ctx context.Context, job string, table, staging graph.TableRef, cols []string, pkColumn string, fullRefresh bool, tlog *logger.Logger) (int64, int, error) {
	after := int64(pkSentinel)
	if !fullRefresh {
		stored, ok, err := e.cursors.Get(ctx, job, table)
		if err != nil {
			return 0, 0, err
		}
		if ok {
			after = stored
			tlog.Debugf("Resuming from cursor %d", stored)
		}
	}

	var (
		staged int64
		chunks int
	)
	for {
		if err := ctx.Err(); err != nil {
			return staged, chunks, fmt.Errorf("sync interrupted: %w", err)
		}

		rows, batchMax, err := e.reader.FetchChunk(ctx, table, cols, pkColumn, after, e.processing.ChunkSize)
		if err != nil {
			return staged, chunks, err
		}
		if len(rows) == 0 {
			break
		}

		if err := e.writer.BulkInsert(ctx, staging, cols, rows); err != nil {
			return staged, chunks, err
		}

		staged += int64(len(rows))
		chunks++
		after = batchMax
		tlog.Debugf("Staged chunk %d: %d rows, cursor now %d", chunks, len(rows), after)

		if err := e.sleepBetweenChunks(ctx); err != nil {
			return staged, chunks, err
		}
	}

	return staged, chunks, nil
}

// stagePaged copies the entire table via offset pagination. Non-numeric
// keys get no incremental narrowing; every run is a full reload.
func (e *Extractor) stagePaged(ctx context.Context, table, staging graph.TableRef, cols []string, pkColumn string, tlog *logger.Logger) (int64, int, error) {
	var (
		staged int64
		chunks int
		offset int
	)
	for {
		if err := ctx.Err(); err != nil {
			return staged, chunks, fmt.Errorf("sync interrupted: %w", err)
		}

		rows, err := e.reader.FetchPage(ctx, table, cols, pkColumn, offset, e.processing.ChunkSize)
		if err != nil {
			return staged, chunks, err
		}
		if len(rows) == 0 {
			break
		}

		if err := e.writer.BulkInsert(ctx, staging, cols, rows); err != nil {
			return staged, chunks, err
		}

		staged += int64(len(rows))
		chunks++
		offset += len(rows)
		tlog.Debugf("Staged page %d: %d rows", chunks, len(rows))

		if err := e.sleepBetweenChunks(ctx); err != nil {
			return staged, chunks, err
		}
	}

	return staged, chunks, nil
}

// advanceCursor records progress after a committed merge. Numeric keys
// store MAX(pk) over the whole source table, not just the staged range;
// non-numeric keys reset to none so the next run reloads in full.
func (e *Extractor) advanceCursor(ctx context.Context, job string, table graph.TableRef, pkColumn string, pkNumeric bool) error {
	if !pkNumeric {
		return e.cursors.Clear(ctx, job, table)
	}

	maxPK, ok, err := e.reader.MaxPK(ctx, table, pkColumn)
	if err != nil {
		return err
	}
	if !ok {
		// empty source table
		return e.cursors.Clear(ctx, job, table)
	}
	return e.cursors.Set(ctx, job, table, maxPK)
}

// sleepBetweenChunks applies the configured inter-chunk pause, waking
// early on cancellation.
func (e *Extractor) sleepBetweenChunks(ctx context.Context) error {
	if e.processing.SleepSeconds <= 0 {
		return nil
	}
	delay := time.Duration(e.processing.SleepSeconds * float64(time.Second))
	select {
	case <-ctx.Done():
		return fmt.Errorf("sync interrupted: %w", ctx.Err())
	case <-time.After(delay):
		return nil
	}
}
