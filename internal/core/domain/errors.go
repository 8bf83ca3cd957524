package domain

import "errors"

// Error kinds. Every failure returned by the catalog wraps exactly one of
// these so adapters can map them with errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("invalid state")
	ErrNotFound        = errors.New("not found")
	ErrNilReference    = errors.New("nil reference")
	ErrConflict        = errors.New("conflict")
)
