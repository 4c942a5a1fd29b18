// Package pkg holds the pieces shared by every layer: domain errors and the
// JSON response envelope.
package pkg

import "errors"

// Domain errors. Services wrap them with context using %w and handlers map
// them to HTTP status codes through Error.
//
//	return fmt.Errorf("%w: whisper not found", pkg.ErrNotFound)
var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrAlreadyExists   = errors.New("already exists")
	ErrBadRequest      = errors.New("bad request")
	ErrTooManyRequests = errors.New("too many requests")
	ErrUnavailable     = errors.New("service unavailable")
	ErrInternal        = errors.New("internal error")
)
