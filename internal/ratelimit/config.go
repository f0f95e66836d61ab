package ratelimit

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// MaxWindowSeconds is the longest window whose duration fits in a time.Duration.
const MaxWindowSeconds = math.MaxInt64 / int64(time.Second)

var errInvalidConfig = errors.New("invalid rate limit config")

// Config is the per-client request budget. It is read once at startup and never mutated.
type Config struct {
	MaxRequests   int64
	WindowSeconds int64
}

// Window returns the window length as a duration.
func (c Config) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// Validate reports whether the budget is positive and the window is positive and representable.
func (c Config) Validate() error {
	if c.MaxRequests <= 0 {
		return fmt.Errorf("%w: max requests must be positive, got %d", errInvalidConfig, c.MaxRequests)
	}

	if c.WindowSeconds <= 0 {
		return fmt.Errorf("%w: window must be positive, got %ds", errInvalidConfig, c.WindowSeconds)
	}

	if c.WindowSeconds > MaxWindowSeconds {
		return fmt.Errorf("%w: window must be at most %ds, got %ds",
			errInvalidConfig, MaxWindowSeconds, c.WindowSeconds)
	}

	return nil
}
