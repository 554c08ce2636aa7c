package apperrors

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrMissingQuestion is returned when a request supplies only a question
	// hash, no cache tier matches it, and there is no original text to
	// regenerate from.
	ErrMissingQuestion = errors.New("question text required: hash lookup missed and no question was provided")

	// ErrConfigMismatch indicates the running instance does not match the
	// version or models the caller expects.
	ErrConfigMismatch = errors.New("configuration mismatch")
)
