package store

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/serroba/link-shortener/internal/ratelimit"
	"golang.org/x/time/rate"
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitTokenBucketStore implements ratelimit.Store with one token bucket per client.
// A bucket holds MaxRequests tokens and refills all of them over one window, which
// smooths the burst a fixed window allows at its boundary.
type RateLimitTokenBucketStore struct {
	mu      sync.Mutex
	buckets map[ratelimit.ClientID]*bucket
}

// NewRateLimitTokenBucketStore creates a new token bucket rate limit store.
func NewRateLimitTokenBucketStore() *RateLimitTokenBucketStore {
	return &RateLimitTokenBucketStore{
		buckets: make(map[ratelimit.ClientID]*bucket),
	}
}

func (s *RateLimitTokenBucketStore) RecordAndCheck(
	_ context.Context, id ratelimit.ClientID, now time.Time, cfg ratelimit.Config,
) (ratelimit.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[id]
	if !ok {
		perSecond := rate.Limit(float64(cfg.MaxRequests) / float64(cfg.WindowSeconds))
		b = &bucket{limiter: rate.NewLimiter(perSecond, int(cfg.MaxRequests))}
		s.buckets[id] = b
	}

	if now.After(b.lastSeen) {
		b.lastSeen = now
	}

	reservation := b.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return ratelimit.Reject(cfg.WindowSeconds), nil
	}

	delay := reservation.DelayFrom(now)
	if delay <= 0 {
		return ratelimit.Allow(), nil
	}

	// Rejected requests must not consume a future token.
	reservation.CancelAt(now)

	retry := int64(math.Ceil(delay.Seconds()))

	return ratelimit.Reject(min(retry, cfg.WindowSeconds)), nil
}

// Sweep drops buckets not used for retention. With retention of at least one window
// such a bucket is full again, so dropping it does not change any decision.
func (s *RateLimitTokenBucketStore) Sweep(now time.Time, retention time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0

	for id, b := range s.buckets {
		if now.Sub(b.lastSeen) >= retention {
			delete(s.buckets, id)

			removed++
		}
	}

	return removed
}

func (s *RateLimitTokenBucketStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.buckets)
}

var (
	_ ratelimit.Store   = (*RateLimitTokenBucketStore)(nil)
	_ ratelimit.Sweeper = (*RateLimitTokenBucketStore)(nil)
)
