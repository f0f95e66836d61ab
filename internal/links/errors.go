package links

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("link not found")
	ErrDuplicateID       = errors.New("link id already taken")
	ErrInvalidID         = errors.New("invalid link id")
	ErrIDTooLong         = errors.New("link id too long")
	ErrInvalidTarget     = errors.New("invalid target url")
	ErrInvalidControlKey = errors.New("invalid control key")
	ErrNothingToEdit     = errors.New("no editable properties found in request")
)

// BulkError reports which request of a bulk add failed. Index is 1-based.
type BulkError struct {
	Index int
	Err   error
}

func (e *BulkError) Error() string {
	return fmt.Sprintf("request %d: %v", e.Index, e.Err)
}

func (e *BulkError) Unwrap() error {
	return e.Err
}
