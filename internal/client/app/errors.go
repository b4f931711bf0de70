package app

import (
	"errors"
	"fmt"

	"github.com/atinyakov/cyberchat/internal/models"
)

var (
	// ErrPersist is returned when the write-through to the store fails. The
	// in-memory state is left untouched.
	ErrPersist = errors.New("failed to persist state")
	// ErrNoActiveKey is returned by SendMessage without an active credential.
	ErrNoActiveKey = fmt.Errorf("%w: no API key configured", models.ErrValidation)
	// ErrNoModel is returned by SendMessage without a selected model.
	ErrNoModel = fmt.Errorf("%w: no model selected", models.ErrValidation)
	// ErrRequestInFlight is returned when a conversation already waits for a
	// reply.
	ErrRequestInFlight = errors.New("a request is already in progress for this conversation")
)
