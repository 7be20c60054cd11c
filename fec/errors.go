package fec

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLength reports a structural mismatch found at construction:
	// a non power-of-two length, a frozen mask of the wrong size, N not a
	// multiple of K.
	ErrInvalidLength = errors.New("invalid length")
	// ErrShapeMismatch reports a call-time buffer of the wrong length.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrInvariantViolation reports a failed internal consistency check.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrCannotAllocate is returned by code-specific encoders that cannot be
	// built in the current configuration. Callers fall back to a generic
	// encoder.
	ErrCannotAllocate = errors.New("cannot allocate")
)

func checkShape(what string, got, want int) error {
	if got != want {
		return fmt.Errorf("%s: got %d values, want %d: %w", what, got, want, ErrShapeMismatch)
	}
	return nil
}

func isPow2(n int) bool { return n > 0 && n&(n-1) == 0 }
