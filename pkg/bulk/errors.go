package bulk

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSpec is returned for caller mistakes: empty fragment list,
	// malformed upsert specification, conflicting options.
	ErrInvalidSpec = errors.New("bulk: invalid import specification")

	// ErrPackingInfeasible is returned when a single fragment does not fit the
	// packet budget even alone.
	ErrPackingInfeasible = errors.New("bulk: row does not fit into max packet size")

	// ErrInconsistentFeedback is returned when the server feedback of a
	// statement cannot describe a valid insert (negative insert count, missing
	// first id, ...). Usually a non-sequential id allocation mode.
	ErrInconsistentFeedback = errors.New("bulk: inconsistent server feedback")

	// ErrDuplicateKey classifies a statement failure caused by a uniqueness
	// violation. Sessions wrap driver errors with it when the driver reports
	// the condition in a structured way.
	ErrDuplicateKey = errors.New("bulk: duplicate key")
)

// StatementError wraps a failure of the execution collaborator.
// Statement is the 1-based position of the failed statement within the import.
type StatementError struct {
	Statement int
	Err       error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("bulk: statement %d failed: %v", e.Statement, e.Err)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}

// DuplicateKeyError marks err as a uniqueness violation without hiding it:
// both errors.Is(err, ErrDuplicateKey) and errors.As on the driver error work.
func DuplicateKeyError(err error) error {
	if err == nil {
		return nil
	}
	return &duplicateKeyError{err: err}
}

type duplicateKeyError struct {
	err error
}

func (e *duplicateKeyError) Error() string { return e.err.Error() }

func (e *duplicateKeyError) Unwrap() []error { return []error{ErrDuplicateKey, e.err} }

// IsDuplicateKey reports whether err was classified as a uniqueness violation.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}
