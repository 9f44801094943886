package records

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that no document matches the given (userId, docId)
// pair. Callers map it to a client-correctable response; it is never wrapped
// as a StorageError.
var ErrNotFound = errors.New("document not found")

// StorageError wraps an underlying read or write failure from either
// backend. It is a server-side failure and is never conflated with
// ErrNotFound.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err is (or wraps) a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
