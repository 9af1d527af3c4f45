package domain

import "errors"

var (
	// ErrValidation indicates a required field was missing or not a usable number
	ErrValidation = errors.New("invalid reading")

	// ErrReadingNotFound indicates requested reading doesn't exist
	ErrReadingNotFound = errors.New("reading not found")

	// ErrPersistenceCorrupt indicates the stored blob could not be decoded
	ErrPersistenceCorrupt = errors.New("stored readings are corrupt")

	// ErrPersistenceWrite indicates the collection could not be flushed to its slot
	ErrPersistenceWrite = errors.New("failed to persist readings")

	// ErrSlotEmpty indicates nothing has been saved under the requested key yet
	ErrSlotEmpty = errors.New("storage slot is empty")

	// ErrCancelled indicates the user declined a confirmation prompt
	ErrCancelled = errors.New("cancelled by user")
)

// ValidationError names the offending input field.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
