package apperrors

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateName = errors.New("duplicate source name")
	ErrValidation    = errors.New("validation failed")
	ErrNoResolution  = errors.New("object name could not be resolved")
)
