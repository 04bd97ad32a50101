package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunReportTotals(t *testing.T) {
	report := &RunReport{
		Job: "nightly_sync",
		Tables: []TableResult{
			{Table: "company.departments", State: StateDone, RowsStaged: 3, RowsMerged: 3, Chunks: 1},
			{Table: "company.employees", State: StateDone, RowsStaged: 10, RowsMerged: 12, Chunks: 2},
			{Table: "company.projects", State: StateFailed, RowsStaged: 4},
			{Table: "company.tasks", State: StatePending},
		},
	}

	assert.Equal(t, int64(17), report.RowsStaged())
	assert.Equal(t, int64(15), report.RowsMerged())
	assert.Equal(t, 2, report.TablesDone())
}

func TestRunReportEmpty(t *testing.T) {
	report := &RunReport{Job: "empty"}

	assert.Equal(t, int64(0), report.RowsStaged())
	assert.Equal(t, int64(0), report.RowsMerged())
	assert.Equal(t, 0, report.TablesDone())
}
