// Package apperr defines the failure kinds shared between the catalog, the
// object store and the HTTP layer. Handlers match with errors.Is and map to
// status codes through Status.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrDuplicateIdentity = errors.New("username or email already registered")
	// ErrAuthFailure covers both unknown usernames and wrong passwords.
	// Callers must not be able to tell which one happened.
	ErrAuthFailure     = errors.New("invalid credentials")
	ErrUnauthenticated = errors.New("authentication required")
	// ErrNotFound covers "doesn't exist" and "exists but isn't yours"
	// identically, so error responses never leak other users' resources.
	ErrNotFound     = errors.New("not found")
	ErrEmptyName    = errors.New("name can't be empty")
	ErrRejectedType = errors.New("unsupported file type")
	ErrTooLarge     = errors.New("file too large")
	ErrWriteFailure = errors.New("failed to store file content")
	// ErrStorageInconsistency marks content and metadata diverging after a
	// partial failure. It is logged, never returned to clients directly.
	ErrStorageInconsistency = errors.New("content and metadata diverged")
)

func Status(err error) int {
	switch {
	case errors.Is(err, ErrDuplicateIdentity):
		return http.StatusConflict
	case errors.Is(err, ErrAuthFailure), errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyName):
		return http.StatusBadRequest
	case errors.Is(err, ErrRejectedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
