package api

import (
	"fmt"
)

// ErrorKind classifies a failed backend call.
type ErrorKind string

const (
	// KindConnection means no HTTP response was received.
	KindConnection ErrorKind = "connection"
	// KindTimeout means the request exceeded its time bound.
	KindTimeout ErrorKind = "timeout"
	// KindProvider means the backend answered with a structured failure.
	KindProvider ErrorKind = "provider"
)

// CompletionError is returned by every Client call that fails.
type CompletionError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *CompletionError) Error() string {
	switch e.Kind {
	case KindTimeout:
		return "request timed out. Please try again"
	case KindConnection:
		if e.Message != "" {
			return fmt.Sprintf("cannot connect to server: %s", e.Message)
		}
		return "cannot connect to server"
	default:
		return e.Message
	}
}

func (e *CompletionError) Unwrap() error { return e.Err }
