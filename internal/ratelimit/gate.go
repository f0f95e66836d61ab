package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Gate makes the admission decision for each inbound request.
type Gate struct {
	store   Store
	cfg     Config
	now     func() time.Time
	metrics *Metrics
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithClock replaces the wall clock used to timestamp requests.
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) {
		g.now = now
	}
}

// WithMetrics records every decision in m.
func WithMetrics(m *Metrics) GateOption {
	return func(g *Gate) {
		g.metrics = m
	}
}

// NewGate creates a gate enforcing cfg against store.
func NewGate(store Store, cfg Config, opts ...GateOption) *Gate {
	g := &Gate{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Config returns the budget the gate enforces.
func (g *Gate) Config() Config {
	return g.cfg
}

// Admit returns nil when the request from id may proceed.
//
// A rejected request yields an *ExceededError. An invalid id yields ErrIdentifierUnresolved
// without touching the store, and a store failure yields an error wrapping
// ErrStoreUnavailable. All of them are terminal for the request.
func (g *Gate) Admit(ctx context.Context, id ClientID) error {
	if !id.IsValid() {
		g.metrics.observe(OutcomeUnresolved)

		return ErrIdentifierUnresolved
	}

	decision, err := g.store.RecordAndCheck(ctx, id, g.now(), g.cfg)
	if err != nil {
		g.metrics.observe(OutcomeUnavailable)

		if errors.Is(err, ErrStoreUnavailable) {
			return err
		}

		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if !decision.Allowed {
		g.metrics.observe(OutcomeRejected)

		return &ExceededError{
			RetryAfter: decision.RetryAfter,
			Limit:      g.cfg.MaxRequests,
			Window:     g.cfg.Window(),
		}
	}

	g.metrics.observe(OutcomeAllowed)

	return nil
}
