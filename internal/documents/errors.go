package documents

import "errors"

var (
	// ErrInvalidInput marks a caller mistake that maps to a 400.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnreadableDocument marks an upload whose text could not be extracted.
	ErrUnreadableDocument = errors.New("unreadable document")
)
