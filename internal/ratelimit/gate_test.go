package ratelimit_test

import (
	"context"
	"errors"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/serroba/link-shortener/internal/ratelimit"
	"github.com/serroba/link-shortener/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBroken = errors.New("broken")

type failingStore struct {
	calls int
}

func (f *failingStore) RecordAndCheck(
	_ context.Context, _ ratelimit.ClientID, _ time.Time, _ ratelimit.Config,
) (ratelimit.Decision, error) {
	f.calls++

	return ratelimit.Decision{}, errBroken
}

// fakeClock is advanced manually by tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Set(seconds int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = epoch.Add(time.Duration(seconds) * time.Second)
}

func TestGate_Admit(t *testing.T) {
	client := netip.MustParseAddr("198.51.100.7")
	cfg := ratelimit.Config{MaxRequests: 3, WindowSeconds: 60}

	t.Run("follows the fixed window scenario", func(t *testing.T) {
		clock := &fakeClock{now: epoch}
		gate := ratelimit.NewGate(store.NewRateLimitMemoryStore(), cfg, ratelimit.WithClock(clock.Now))
		ctx := context.Background()

		for _, sec := range []int{0, 10, 20} {
			clock.Set(sec)
			require.NoError(t, gate.Admit(ctx, client), "request at t=%d", sec)
		}

		clock.Set(30)
		err := gate.Admit(ctx, client)

		require.ErrorIs(t, err, ratelimit.ErrBudgetExceeded)

		exceeded, ok := ratelimit.AsExceeded(err)
		require.True(t, ok)
		assert.Equal(t, int64(30), exceeded.RetryAfter)
		assert.Equal(t, int64(3), exceeded.Limit)
		assert.Equal(t, time.Minute, exceeded.Window)

		clock.Set(61)
		assert.NoError(t, gate.Admit(ctx, client))
	})

	t.Run("unresolved identifier fails closed without touching the store", func(t *testing.T) {
		memStore := store.NewRateLimitMemoryStore()
		gate := ratelimit.NewGate(memStore, cfg)

		err := gate.Admit(context.Background(), netip.Addr{})

		require.ErrorIs(t, err, ratelimit.ErrIdentifierUnresolved)
		assert.Equal(t, 0, memStore.Len())
	})

	t.Run("store failure is reported as unavailable", func(t *testing.T) {
		failing := &failingStore{}
		gate := ratelimit.NewGate(failing, cfg)

		err := gate.Admit(context.Background(), client)

		require.ErrorIs(t, err, ratelimit.ErrStoreUnavailable)
		require.ErrorIs(t, err, errBroken)
		assert.NotErrorIs(t, err, ratelimit.ErrBudgetExceeded)
		assert.Equal(t, 1, failing.calls)
	})

	t.Run("concurrent requests admit exactly the budget", func(t *testing.T) {
		gate := ratelimit.NewGate(store.NewRateLimitMemoryStore(), cfg)

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			allowed  int
			rejected int
		)

		for range 20 {
			wg.Add(1)

			go func() {
				defer wg.Done()

				err := gate.Admit(context.Background(), client)

				mu.Lock()
				defer mu.Unlock()

				if err == nil {
					allowed++
				} else if errors.Is(err, ratelimit.ErrBudgetExceeded) {
					rejected++
				}
			}()
		}

		wg.Wait()

		assert.Equal(t, 3, allowed)
		assert.Equal(t, 17, rejected)
	})

	t.Run("records outcomes in metrics", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		memStore := store.NewRateLimitMemoryStore()
		metrics := ratelimit.NewMetrics(reg, memStore)
		gate := ratelimit.NewGate(memStore, ratelimit.Config{MaxRequests: 1, WindowSeconds: 60},
			ratelimit.WithMetrics(metrics))
		ctx := context.Background()

		_ = gate.Admit(ctx, client)
		_ = gate.Admit(ctx, client)
		_ = gate.Admit(ctx, netip.Addr{})

		families, err := reg.Gather()
		require.NoError(t, err)

		values := map[string]float64{}

		for _, family := range families {
			if family.GetName() != "shortener_ratelimit_admissions_total" {
				continue
			}

			for _, m := range family.GetMetric() {
				values[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
			}
		}

		assert.InDelta(t, 1, values[ratelimit.OutcomeAllowed], 0)
		assert.InDelta(t, 1, values[ratelimit.OutcomeRejected], 0)
		assert.InDelta(t, 1, values[ratelimit.OutcomeUnresolved], 0)

		count, err := testutil.GatherAndCount(reg, "shortener_ratelimit_tracked_clients")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
