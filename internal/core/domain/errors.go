package domain

import "errors"

var (
	// ErrInvalidInput marks a request with missing or malformed required fields.
	ErrInvalidInput = errors.New("all fields are required")
	// ErrInvalidID marks an identifier that is not a valid document id.
	ErrInvalidID = errors.New("invalid id")
)
