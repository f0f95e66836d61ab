package ratelimit

import (
	"context"
	"net/netip"
	"time"
)

// ClientID identifies one requester. The zero value is an unresolved identifier.
type ClientID = netip.Addr

// UsageRecord tracks how many requests a client was admitted in its current window.
type UsageRecord struct {
	RequestCount int64
	WindowStart  time.Time
}

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed bool
	// RetryAfter is the number of whole seconds until the client is expected to be admitted again.
	// It is only meaningful when Allowed is false.
	RetryAfter int64
}

// Allow is the admitting decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Reject is a rejecting decision carrying the retry delay in seconds.
func Reject(retryAfter int64) Decision {
	return Decision{RetryAfter: retryAfter}
}

// Store holds per-client usage and evolves it atomically.
type Store interface {
	// RecordAndCheck counts a request from id at now against cfg and decides whether to admit it.
	// Check and update happen in one critical section. A failure of the store itself is
	// reported as an error wrapping ErrStoreUnavailable.
	RecordAndCheck(ctx context.Context, id ClientID, now time.Time, cfg Config) (Decision, error)
}

// Sweeper is a Store whose idle records can be evicted.
type Sweeper interface {
	// Sweep removes records whose window started at least retention before now and
	// returns how many were removed.
	Sweep(now time.Time, retention time.Duration) int
	// Len returns the number of tracked clients.
	Len() int
}

// Observe applies one request at now to an existing record using fixed-window counting.
//
// An expired window is reset to start at now with the request counted. Within the window
// the count is incremented while under budget. Otherwise the record is left untouched and
// the decision carries the seconds remaining in the window, truncated to whole seconds.
func (r *UsageRecord) Observe(now time.Time, cfg Config) Decision {
	window := cfg.Window()
	elapsed := now.Sub(r.WindowStart)

	if elapsed >= window {
		r.RequestCount = 1
		r.WindowStart = now

		return Allow()
	}

	if r.RequestCount < cfg.MaxRequests {
		r.RequestCount++

		return Allow()
	}

	return Reject(retryAfter(elapsed, cfg.WindowSeconds))
}

// retryAfter is window minus whole elapsed seconds, clamped to [0, window].
// A negative elapsed time (clock stepped backwards) yields the full window.
func retryAfter(elapsed time.Duration, windowSeconds int64) int64 {
	if elapsed < 0 {
		return windowSeconds
	}

	remaining := windowSeconds - int64(elapsed/time.Second)

	return max(0, min(remaining, windowSeconds))
}
