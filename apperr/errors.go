// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every request-path failure the core reports wraps exactly one
// of these, so callers branch with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrInvalid      = errors.New("invalid")
)

// Unauthorized wraps ErrUnauthorized with a formatted detail.
func Unauthorized(format string, args ...any) error {
	return wrap(ErrUnauthorized, format, args...)
}

// NotFound wraps ErrNotFound with a formatted detail.
func NotFound(format string, args ...any) error {
	return wrap(ErrNotFound, format, args...)
}

// InvalidState wraps ErrInvalidState with a formatted detail.
func InvalidState(format string, args ...any) error {
	return wrap(ErrInvalidState, format, args...)
}

// Invalid wraps ErrInvalid with a formatted detail.
func Invalid(format string, args ...any) error {
	return wrap(ErrInvalid, format, args...)
}

func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Kind returns the kind sentinel err wraps, or nil for unclassified errors
// (storage failures and the like).
func Kind(err error) error {
	for _, kind := range []error{ErrUnauthorized, ErrNotFound, ErrInvalidState, ErrInvalid} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Status maps an error to the HTTP status the API reports for it.
func Status(err error) int {
	switch Kind(err) {
	case ErrUnauthorized:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrInvalidState:
		return http.StatusConflict
	case ErrInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
