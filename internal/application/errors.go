package application

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrProRequired        = errors.New("pro entitlement required")
	ErrGenerationFailed   = errors.New("routine generation failed")
	ErrExportUnavailable  = errors.New("export storage not configured")
)

// LockedError lists premium features a free account tried to use.
// It matches ErrProRequired with errors.Is.
type LockedError struct {
	Features []string
}

func (e *LockedError) Error() string {
	return ErrProRequired.Error() + ": " + strings.Join(e.Features, ", ")
}

func (e *LockedError) Unwrap() error { return ErrProRequired }
