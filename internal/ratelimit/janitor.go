package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

var errInvalidRetention = errors.New("retention must be at least one window and fit in a time.Duration")

// Janitor periodically evicts usage records that have been idle for longer than the retention period.
type Janitor struct {
	sweeper   Sweeper
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	metrics   *Metrics
	logger    *zap.Logger
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewJanitor creates a janitor sweeping every interval. The retention is windows multiples of
// the configured window and must be at least one so that no live window is discarded. The
// product must fit in a time.Duration.
func NewJanitor(
	sweeper Sweeper,
	cfg Config,
	windows int64,
	interval time.Duration,
	metrics *Metrics,
	logger *zap.Logger,
) (*Janitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if windows < 1 || windows > math.MaxInt64/int64(cfg.Window()) {
		return nil, fmt.Errorf("%w: got %d windows", errInvalidRetention, windows)
	}

	return &Janitor{
		sweeper:   sweeper,
		interval:  interval,
		retention: time.Duration(windows) * cfg.Window(),
		now:       time.Now,
		metrics:   metrics,
		logger:    logger,
		done:      make(chan struct{}),
	}, nil
}

// Retention returns how long an idle record is kept.
func (j *Janitor) Retention() time.Duration {
	return j.retention
}

// Start launches the sweep loop. A non-positive interval disables sweeping.
func (j *Janitor) Start(ctx context.Context) error {
	if j.interval <= 0 {
		return nil
	}

	ctx, j.cancel = context.WithCancel(ctx)
	ticker := time.NewTicker(j.interval)

	go func() {
		defer close(j.done)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				j.SweepNow()
			}
		}
	}()

	return nil
}

// SweepNow runs one sweep and returns the number of evicted records.
func (j *Janitor) SweepNow() int {
	removed := j.sweeper.Sweep(j.now(), j.retention)
	j.metrics.sweptRecords(removed)

	if removed > 0 {
		j.logger.Debug("swept idle rate limit records",
			zap.Int("removed", removed),
			zap.Int("remaining", j.sweeper.Len()),
		)
	}

	return removed
}

// Shutdown stops the sweep loop and waits for it to exit.
func (j *Janitor) Shutdown() error {
	if j.cancel == nil {
		return nil
	}

	j.cancel()
	<-j.done

	return nil
}
