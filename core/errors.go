package core

import "errors"

// Pipeline error taxonomy. Every refresh surfaces exactly one of these (or
// succeeds); callers match with errors.Is.
var (
	// ErrSource is a transient network or provider failure, retryable by the caller.
	ErrSource = errors.New("source error")

	// ErrDataUnavailable means the source returned nothing for the symbol.
	ErrDataUnavailable = errors.New("no data available for symbol")

	// ErrValidation means every returned row failed validation, likely a
	// source schema change.
	ErrValidation = errors.New("all rows failed validation")

	// ErrInvariantViolation is an internal contract break. Always a bug,
	// aborts the refresh before anything is written.
	ErrInvariantViolation = errors.New("invariant violation")
)
