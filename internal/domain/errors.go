package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication is returned when login credentials are rejected.
	ErrAuthentication = errors.New("authentication failed")
	// ErrAuthorization is returned when a session token is missing, expired or revoked.
	ErrAuthorization = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrValidation    = errors.New("validation failed")
	// ErrTransient covers network and upstream failures that may succeed on a later attempt.
	ErrTransient = errors.New("transient failure")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
