package ratelimit

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrBudgetExceeded is returned when a client has used its whole budget for the current window.
	ErrBudgetExceeded = errors.New("request budget exceeded")
	// ErrIdentifierUnresolved is returned when no client identifier could be determined.
	ErrIdentifierUnresolved = errors.New("client identifier unresolved")
	// ErrStoreUnavailable is returned when the usage store failed while deciding.
	ErrStoreUnavailable = errors.New("rate limit store unavailable")
)

// ExceededError carries the retry delay of a rejected request.
type ExceededError struct {
	RetryAfter int64
	Limit      int64
	Window     time.Duration
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %d requests per %s, retry in %ds", e.Limit, e.Window, e.RetryAfter)
}

func (e *ExceededError) Unwrap() error {
	return ErrBudgetExceeded
}

// AsExceeded returns the ExceededError in err's chain, if any.
func AsExceeded(err error) (*ExceededError, bool) {
	var exceeded *ExceededError
	if errors.As(err, &exceeded) {
		return exceeded, true
	}

	return nil, false
}
