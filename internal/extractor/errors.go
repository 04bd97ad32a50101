package extractor

import "fmt"

// ConstraintError is returned when the destination rejects a merge, for
// example a referential-integrity or uniqueness violation raised by the
// REPLACE statement. It aborts the remaining tables of the run.
type ConstraintError struct {
	Table string
	Err   error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("destination rejected merge for table %s: %v", e.Table, e.Err)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}
