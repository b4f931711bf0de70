package models

import "errors"

var (
	// ErrValidation is returned when a required field is missing or malformed.
	ErrValidation = errors.New("validation error")
	// ErrNotFound is returned for operations on an absent id.
	ErrNotFound = errors.New("not found")
)
