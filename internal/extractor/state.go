package extractor

import "time"

// TableState tracks a table's progress within one run. A table enters
// Pending, moves through Staging and Merging, and ends in Done or Failed;
// nothing transitions out of Done or Failed.
type TableState string

const (
	StatePending TableState = "pending"
	StateStaging TableState = "staging"
	StateMerging TableState = "merging"
	StateDone    TableState = "done"
	StateFailed  TableState = "failed"
)

// TableResult records the outcome of one table within a run.
type TableResult struct {
	Table      string
	State      TableState
	RowsStaged int64
	RowsMerged int64
	Chunks     int
	Duration   time.Duration
	Err        error
}

// RunReport summarizes a whole run.
type RunReport struct {
	Job       string
	StartedAt time.Time
	Duration  time.Duration
	Tables    []TableResult
	Success   bool
}

// RowsStaged totals staged rows across all tables.
func (r *RunReport) RowsStaged() int64 {
	var total int64
	for _, t := range r.Tables {
		total += t.RowsStaged
	}
	return total
}

// RowsMerged totals merged rows across all tables. REPLACE counts a
// replaced row twice (delete + insert), so this can exceed RowsStaged.
func (r *RunReport) RowsMerged() int64 {
	var total int64
	for _, t := range r.Tables {
		total += t.RowsMerged
	}
	return total
}

// TablesDone counts tables that completed their merge.
func (r *RunReport) TablesDone() int {
	n := 0
	for _, t := range r.Tables {
		if t.State == StateDone {
			n++
		}
	}
	return n
}
