package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrMutatorRequired is returned when a live run is requested without a mutator.
	ErrMutatorRequired = errors.New("mutator required for a live run")

	// ErrRecordNotFound is returned when an operation targets an email with no mirror record.
	ErrRecordNotFound = errors.New("mirror record not found")

	// ErrMissingID is returned when a source record with an email has no identifier.
	ErrMissingID = errors.New("source record has no id")
)

// DuplicateKeyError reports a key shared by several records in a collection
// that must be unique on that key.
type DuplicateKeyError struct {
	// Key is the colliding key value.
	Key string

	// Records are the colliding records, in input order.
	Records []any
}

// Error implements the error interface.
func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("expected exactly 1 record for key %q, found %d: %v", e.Key, len(e.Records), e.Records)
}

// MutationError wraps a failed call to the mirror mutator.
type MutationError struct {
	// Op is the operation that failed.
	Op Operation

	// Err is the mutator's error.
	Err error

	// Applied lists the operations forwarded before Op. They stay applied.
	Applied []Operation
}

// Error implements the error interface.
func (e *MutationError) Error() string {
	return fmt.Sprintf("failed to apply %s: %v", e.Op, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *MutationError) Unwrap() error {
	return e.Err
}

// IsDuplicateKey checks if an error is a DuplicateKeyError.
func IsDuplicateKey(err error) bool {
	var dup *DuplicateKeyError
	return errors.As(err, &dup)
}
