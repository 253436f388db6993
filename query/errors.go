package query

import "errors"

// Error classes returned by the service. Handlers map them with errors.Is.
var (
	// ErrInvalidInput marks a request that can never succeed as sent.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks an unknown catalog id.
	ErrNotFound = errors.New("not found")
)
