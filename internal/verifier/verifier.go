// Package verifier compares source and destination after a sync run.
package verifier

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dbsmedya/gostage/internal/graph"
	"github.com/dbsmedya/gostage/internal/logger"
	"github.com/dbsmedya/gostage/internal/sqlutil"
)

// VerificationMethod defines how synced tables are checked.
type VerificationMethod string

const (
	// MethodCount compares row counts between source and destination.
	MethodCount VerificationMethod = "count"
	// MethodNone skips verification entirely.
	MethodNone VerificationMethod = "none"
)

// VerifyResult holds the verification outcome for a single table.
type VerifyResult struct {
	Table       string
	SourceCount int64
	DestCount   int64
	Match       bool
}

// VerifyStats summarizes a verification pass.
type VerifyStats struct {
	Method         VerificationMethod
	TablesVerified int
	TablesPassed   int
	TablesFailed   int
	Results        []VerifyResult
}

// Verifier compares synced tables between the source and destination.
type Verifier struct {
	source      *sql.DB
	destination *sql.DB
	method      VerificationMethod
	logger      *logger.Logger
}

// NewVerifier creates a verifier. An empty method defaults to count.
func NewVerifier(source, destination *sql.DB, method VerificationMethod, log *logger.Logger) (*Verifier, error) {
	if source == nil {
		return nil, fmt.Errorf("source database is nil")
	}
	if destination == nil {
		return nil, fmt.Errorf("destination database is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}
	if method == "" {
		method = MethodCount
	}

	return &Verifier{
		source:      source,
		destination: destination,
		method:      method,
		logger:      log,
	}, nil
}

// VerifyTables checks every table of the plan. A count mismatch is not an
// error return; it is reported in the stats so the caller can decide how
// loud to be. Only infrastructure failures return an error.
func (v *Verifier) VerifyTables(ctx context.Context, tables []graph.TableRef) (*VerifyStats, error) {
	stats := &VerifyStats{Method: v.method}

	if v.method == MethodNone {
		v.logger.Info("Verification skipped (method=none)")
		return stats, nil
	}

	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("verification interrupted: %w", err)
		}

		result, err := v.verifyCount(ctx, table)
		if err != nil {
			return stats, err
		}

		stats.TablesVerified++
		stats.Results = append(stats.Results, result)
		if result.Match {
			stats.TablesPassed++
		} else {
			stats.TablesFailed++
			v.logger.Warnf("Row count mismatch on %s: source=%d destination=%d",
				table, result.SourceCount, result.DestCount)
		}
	}

	v.logger.Infof("Verification complete: %d tables, %d passed, %d failed",
		stats.TablesVerified, stats.TablesPassed, stats.TablesFailed)
	return stats, nil
}

// verifyCount compares COUNT(*) on both sides of one table.
func (v *Verifier) verifyCount(ctx context.Context, table graph.TableRef) (VerifyResult, error) {
	result := VerifyResult{Table: table.String()}

	sourceCount, err := countRows(ctx, v.source, table)
	if err != nil {
		return result, fmt.Errorf("failed to count source rows of %s: %w", table, err)
	}
	destCount, err := countRows(ctx, v.destination, table)
	if err != nil {
		return result, fmt.Errorf("failed to count destination rows of %s: %w", table, err)
	}

	result.SourceCount = sourceCount
	result.DestCount = destCount
	result.Match = sourceCount == destCount
	return result, nil
}

func countRows(ctx context.Context, db *sql.DB, table graph.TableRef) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", sqlutil.QuoteQualified(table.Schema, table.Table))

	var count int64
	if err := db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
