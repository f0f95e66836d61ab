package container

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do"
	"github.com/serroba/link-shortener/internal/ratelimit"
	"github.com/serroba/link-shortener/internal/store"
	"go.uber.org/zap"
)

// RateLimitStore is an admission store whose idle clients can be swept.
type RateLimitStore interface {
	ratelimit.Store
	ratelimit.Sweeper
}

// RateLimitPackage provides the admission gate and a running janitor for its store.
func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (RateLimitStore, error) {
		opts := do.MustInvoke[*Options](i)
		if err := opts.Validate(); err != nil {
			return nil, err
		}

		if opts.RateLimitAlgorithm == AlgorithmTokenBucket {
			return store.NewRateLimitTokenBucketStore(), nil
		}

		return store.NewRateLimitMemoryStore(), nil
	})

	do.Provide(i, func(i *do.Injector) (*ratelimit.Metrics, error) {
		st, err := do.Invoke[RateLimitStore](i)
		if err != nil {
			return nil, err
		}

		return ratelimit.NewMetrics(do.MustInvoke[*prometheus.Registry](i), st), nil
	})

	do.Provide(i, func(i *do.Injector) (*ratelimit.Gate, error) {
		opts := do.MustInvoke[*Options](i)

		st, err := do.Invoke[RateLimitStore](i)
		if err != nil {
			return nil, err
		}

		metrics, err := do.Invoke[*ratelimit.Metrics](i)
		if err != nil {
			return nil, err
		}

		return ratelimit.NewGate(st, opts.RateLimitConfig(), ratelimit.WithMetrics(metrics)), nil
	})

	do.Provide(i, func(i *do.Injector) (*ratelimit.Janitor, error) {
		opts := do.MustInvoke[*Options](i)

		st, err := do.Invoke[RateLimitStore](i)
		if err != nil {
			return nil, err
		}

		metrics, err := do.Invoke[*ratelimit.Metrics](i)
		if err != nil {
			return nil, err
		}

		janitor, err := ratelimit.NewJanitor(
			st,
			opts.RateLimitConfig(),
			int64(opts.RateLimitRetention),
			time.Duration(opts.RateLimitSweepInterval)*time.Second,
			metrics,
			do.MustInvoke[*zap.Logger](i),
		)
		if err != nil {
			return nil, err
		}

		if err := janitor.Start(context.Background()); err != nil {
			return nil, err
		}

		return janitor, nil
	})
}
