// Package apperr holds the error categories shared by every domain package.
// Domain packages wrap these so callers can branch with errors.Is.
package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidState   = errors.New("invalid state")
	ErrAlreadyExists  = errors.New("already exists")
	ErrAlreadyMatched = errors.New("already matched")
	ErrValidation     = errors.New("validation error")
)

// Code returns a short machine-readable name for the category of err,
// or "internal" when err does not belong to any category.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrAlreadyMatched):
		return "already_matched"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	default:
		return "internal"
	}
}
