package documents

import "errors"

var (
	// ErrNotFound is returned when a document does not exist for the user.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidInput is returned for missing or malformed upload input.
	ErrInvalidInput = errors.New("invalid input")
)
