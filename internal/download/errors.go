package download

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is wrapped by SelectionError.
	ErrOutOfRange = errors.New("download index is out of range")

	// ErrEmptyList is returned when there is nothing to download.
	ErrEmptyList = errors.New("download list is empty")

	// ErrStandaloneNotImplemented is returned for providers whose works are
	// standalone documents.
	ErrStandaloneNotImplemented = errors.New("standalone works are not supported yet")

	// ErrNotInitialized is returned by Download before Initialize succeeded.
	ErrNotInitialized = errors.New("manager is not initialized")
)

// SelectionError reports a selected work index outside the work list.
type SelectionError struct {
	Index int
	Count int
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("download index %d is out of range [0, %d)", e.Index, e.Count)
}

// Unwrap returns ErrOutOfRange.
func (e *SelectionError) Unwrap() error {
	return ErrOutOfRange
}
