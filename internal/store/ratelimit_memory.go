package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/serroba/link-shortener/internal/ratelimit"
)

type observeFunc func(rec *ratelimit.UsageRecord, now time.Time, cfg ratelimit.Config) ratelimit.Decision

// RateLimitMemoryStore is an in-memory fixed-window implementation of ratelimit.Store.
// One mutex guards the whole map, so concurrent requests for the same client are
// admitted in lock acquisition order.
type RateLimitMemoryStore struct {
	mu      sync.Mutex
	records map[ratelimit.ClientID]*ratelimit.UsageRecord
	observe observeFunc
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		records: make(map[ratelimit.ClientID]*ratelimit.UsageRecord),
		observe: (*ratelimit.UsageRecord).Observe,
	}
}

func (s *RateLimitMemoryStore) RecordAndCheck(
	_ context.Context, id ratelimit.ClientID, now time.Time, cfg ratelimit.Config,
) (decision ratelimit.Decision, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A fault mid-update leaves the record in an unknown state; drop it and fail closed.
	defer func() {
		if r := recover(); r != nil {
			delete(s.records, id)

			decision = ratelimit.Decision{}
			err = fmt.Errorf("%w: %v", ratelimit.ErrStoreUnavailable, r)
		}
	}()

	rec, ok := s.records[id]
	if !ok {
		s.records[id] = &ratelimit.UsageRecord{RequestCount: 1, WindowStart: now}

		return ratelimit.Allow(), nil
	}

	return s.observe(rec, now, cfg), nil
}

// Get returns a copy of the usage record for id.
func (s *RateLimitMemoryStore) Get(id ratelimit.ClientID) (ratelimit.UsageRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return ratelimit.UsageRecord{}, false
	}

	return *rec, true
}

func (s *RateLimitMemoryStore) Sweep(now time.Time, retention time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0

	for id, rec := range s.records {
		if now.Sub(rec.WindowStart) >= retention {
			delete(s.records, id)

			removed++
		}
	}

	return removed
}

func (s *RateLimitMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}

var (
	_ ratelimit.Store   = (*RateLimitMemoryStore)(nil)
	_ ratelimit.Sweeper = (*RateLimitMemoryStore)(nil)
)
