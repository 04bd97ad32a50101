// Package lock provides MySQL advisory locking for GoStage jobs. One
// named lock per job guarantees at most one concurrent sync run per
// (job, destination), which the extractor requires: two runs racing on
// the same staging relations and cursor entries would corrupt both.
package lock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrLockTimeout is returned when another instance holds the lock.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// Timeout values for lock acquisition, in seconds. MySQL treats negative
// values as an infinite wait.
const (
	TimeoutImmediate = 0
	TimeoutShort     = 1
	TimeoutMedium    = 10
	TimeoutInfinite  = -1
)

// AdvisoryLock wraps a MySQL GET_LOCK named lock. The server releases it
// automatically when the holding connection closes, so a crashed run
// never wedges the job.
type AdvisoryLock struct {
	db       *sql.DB
	lockName string
	held     bool
}

// NewAdvisoryLock creates a lock handle; nothing is acquired until
// AcquireLock is called.
func NewAdvisoryLock(db *sql.DB, lockName string) *AdvisoryLock {
	return &AdvisoryLock{db: db, lockName: lockName}
}

// AcquireLock tries to take the lock, waiting up to timeoutSeconds.
// Returns false without error when the timeout elapses.
//
// GET_LOCK returns 1 on success, 0 on timeout, NULL on server error.
func (a *AdvisoryLock) AcquireLock(ctx context.Context, timeoutSeconds int) (bool, error) {
	if a.held {
		return true, nil
	}

	var result sql.NullInt64
	err := a.db.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", a.lockName, timeoutSeconds).Scan(&result)
	if err != nil {
		return false, fmt.Errorf("failed to execute GET_LOCK: %w", err)
	}
	if !result.Valid {
		return false, fmt.Errorf("GET_LOCK returned NULL for lock %q", a.lockName)
	}

	switch result.Int64 {
	case 1:
		a.held = true
		return true, nil
	case 0:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected GET_LOCK return value: %d", result.Int64)
	}
}

// ReleaseLock releases the lock. Returns false without error when the
// lock was not held by this handle.
func (a *AdvisoryLock) ReleaseLock(ctx context.Context) (bool, error) {
	if !a.held {
		return false, nil
	}

	var result sql.NullInt64
	err := a.db.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", a.lockName).Scan(&result)
	if err != nil {
		return false, fmt.Errorf("failed to execute RELEASE_LOCK: %w", err)
	}
	if !result.Valid {
		a.held = false
		return false, fmt.Errorf("RELEASE_LOCK returned NULL for lock %q", a.lockName)
	}

	switch result.Int64 {
	case 1:
		a.held = false
		return true, nil
	case 0:
		a.held = false
		return false, nil
	default:
		return false, fmt.Errorf("unexpected RELEASE_LOCK return value: %d", result.Int64)
	}
}

// IsHeld reports whether this handle currently holds the lock.
func (a *AdvisoryLock) IsHeld() bool {
	return a.held
}

// LockName returns the server-side lock name.
func (a *AdvisoryLock) LockName() string {
	return a.lockName
}

// TryAcquire attempts to take the lock without waiting.
func (a *AdvisoryLock) TryAcquire(ctx context.Context) (bool, error) {
	return a.AcquireLock(ctx, TimeoutImmediate)
}

// AcquireOrFail takes the lock with a short wait and turns a timeout into
// ErrLockTimeout, for the fail-fast duplicate-run check.
func (a *AdvisoryLock) AcquireOrFail(ctx context.Context) error {
	acquired, err := a.AcquireLock(ctx, TimeoutShort)
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("%w: lock %q is held by another instance", ErrLockTimeout, a.lockName)
	}
	return nil
}

// JobLockName builds the lock name for a sync job: "gostage:job:<name>",
// with anything outside [A-Za-z0-9_-] mapped to underscore.
func JobLockName(jobName string) string {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, jobName)
	return "gostage:job:" + sanitized
}

// NewJobLock creates the advisory lock guarding a sync job. The lock must
// live on the destination: that is the resource two runs would fight over.
func NewJobLock(db *sql.DB, jobName string) *AdvisoryLock {
	return NewAdvisoryLock(db, JobLockName(jobName))
}

// IsJobRunning probes a job's lock without keeping it. The answer is a
// snapshot; the job may start or stop right after this returns.
func IsJobRunning(ctx context.Context, db *sql.DB, jobName string) (bool, error) {
	l := NewJobLock(db, jobName)
	acquired, err := l.TryAcquire(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check if job %q is running: %w", jobName, err)
	}
	if acquired {
		_, _ = l.ReleaseLock(ctx)
		return false, nil
	}
	return true, nil
}

// WithLock runs fn while holding the lock, releasing it on every exit
// path including panic. Release uses a fresh short-deadline context so a
// cancelled run can still clean up.
func (a *AdvisoryLock) WithLock(ctx context.Context, timeoutSeconds int, fn func() error) error {
	acquired, err := a.AcquireLock(ctx, timeoutSeconds)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		return fmt.Errorf("%w: lock %q is held by another instance", ErrLockTimeout, a.lockName)
	}

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// a failed release is fine: the server drops the lock with the connection
		_, _ = a.ReleaseLock(releaseCtx)
	}()

	return fn()
}

// WithJobLock runs fn under the job's lock with the fail-fast timeout.
func WithJobLock(ctx context.Context, db *sql.DB, jobName string, fn func() error) error {
	return NewJobLock(db, jobName).WithLock(ctx, TimeoutShort, fn)
}
