package scstate

import (
	"errors"
	"fmt"
)

var (
	// ErrBucketNotFound is returned when the state bucket is missing.
	ErrBucketNotFound = errors.New("bucket not found")

	// ErrReadOnly is the panic value of a write through a read-only store.
	ErrReadOnly = errors.New("write to read-only state")

	ErrSnapshotVersion   = errors.New("unsupported snapshot version")
	ErrSnapshotMalformed = errors.New("malformed snapshot")
)

// AbortError is returned by Call and View when the call panicked. Err is the
// panic value if it was an error, e.g. *codec.DataError or *kvo.IndexError.
type AbortError struct {
	Contract string
	Reason   any
	Err      error
	Stack    string
}

func (e *AbortError) Unwrap() error {
	return e.Err
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("%s: aborted: %v", e.Contract, e.Reason)
}

// IsAbort reports whether err comes from a panicking call.
func IsAbort(err error) bool {
	var ae *AbortError
	return errors.As(err, &ae)
}
