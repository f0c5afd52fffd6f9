package datastore

import (
	"errors"
	"fmt"
)

// ErrRepoNotFound is returned when an operation references a repository
// that was never defined. This is a programming error in the caller;
// it is never retried.
var ErrRepoNotFound = errors.New("repository not defined")

// SerializationError reports a failed JSON import/export or a value that
// could not be normalized into a JSON-safe form.
type SerializationError struct {
	Op  string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("datastore serialization failed during %s: %v", e.Op, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// IsSerializationError checks if an error is a serialization error.
func IsSerializationError(err error) bool {
	var se *SerializationError
	return errors.As(err, &se)
}
