package store

import (
	"time"

	"github.com/serroba/link-shortener/internal/ratelimit"
)

// SetObserver replaces the window arithmetic so tests can inject faults.
func (s *RateLimitMemoryStore) SetObserver(
	fn func(rec *ratelimit.UsageRecord, now time.Time, cfg ratelimit.Config) ratelimit.Decision,
) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.observe = fn
}
