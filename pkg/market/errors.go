package market

import "errors"

// Error taxonomy for marketplace operations.
//
// Every precondition failure surfaces verbatim to the caller as one of these
// sentinels, wrapped with operation context via fmt.Errorf and %w. Callers
// must treat ErrConflict as "re-read current state and decide again"; every
// other kind is terminal for that input. No layer retries internally.
var (
	// ErrAlreadyExists indicates a create hit an existing record at the
	// derived address
	ErrAlreadyExists = errors.New("record already exists")

	// ErrNotFound indicates no record exists at the derived address
	ErrNotFound = errors.New("record not found")

	// ErrInvalidState indicates an illegal lifecycle transition
	ErrInvalidState = errors.New("invalid task state for transition")

	// ErrUnauthorized indicates the caller lacks the role the operation
	// requires, or failed authentication
	ErrUnauthorized = errors.New("caller not authorized")

	// ErrInvalidInput indicates a malformed field (empty title, reward below
	// minimum, self-assignment)
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates a concurrent commit race was lost
	ErrConflict = errors.New("conflicting concurrent commit")
)

// IsNotFound returns true if the error wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists returns true if the error wraps ErrAlreadyExists.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsConflict returns true if the error wraps ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsInvalidState returns true if the error wraps ErrInvalidState.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsUnauthorized returns true if the error wraps ErrUnauthorized.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsInvalidInput returns true if the error wraps ErrInvalidInput.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
