package errors

import "errors"

var (
	// ErrDuplicateConnection is returned when a connection id is registered
	// while a record for it is still live. Indicates a transport-layer bug.
	ErrDuplicateConnection = errors.New("connection id already registered")

	// ErrUnknownConnection is returned when an operation references a
	// connection the registry has never seen or has already forgotten.
	ErrUnknownConnection = errors.New("unknown connection")
)
