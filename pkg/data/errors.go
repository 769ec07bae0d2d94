package data

import "errors"

// Error taxonomy shared by the pipeline stages. Callers match with errors.Is.
var (
	// ErrNotFound reports a missing file or directory.
	ErrNotFound = errors.New("not found")
	// ErrNotDir reports a path that exists but is not a directory.
	ErrNotDir = errors.New("not a directory")
	// ErrInvalidInput reports an argument of the wrong shape or value.
	ErrInvalidInput = errors.New("invalid input")
	// ErrColumnNotFound reports a reference to a column the dataset does not have.
	ErrColumnNotFound = errors.New("column not found")
	// ErrColumnCount reports a mismatch between expected and actual column counts.
	ErrColumnCount = errors.New("column count mismatch")
)
