package container

import (
	"context"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do"
	"github.com/serroba/link-shortener/internal/links"
	"github.com/serroba/link-shortener/internal/store"
	"go.uber.org/zap"
)

const (
	startupTimeout  = time.Minute
	startupAttempts = 6
	maxStartupDelay = 10 * time.Second
	mysqlMaxConns   = 10
)

// RepositoryPackage provides the link repository and the link service on top of it.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, newRepository)
	do.Provide(i, func(i *do.Injector) (*links.Service, error) {
		opts := do.MustInvoke[*Options](i)

		repo, err := do.Invoke[links.Repository](i)
		if err != nil {
			return nil, err
		}

		return links.NewService(repo, links.NewBcryptHasher(opts.BcryptCost), links.Options{
			MaxIDLength:     opts.MaxIDLength,
			MaxAutoIDLength: opts.MaxAutoIDLength,
		})
	})
}

// schemaStore is a database-backed repository that can prepare its own tables.
type schemaStore interface {
	links.Repository
	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
	Shutdown() error
}

func newRepository(i *do.Injector) (links.Repository, error) {
	opts := do.MustInvoke[*Options](i)
	logger := do.MustInvoke[*zap.Logger](i)

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	var repo links.Repository

	switch opts.Storage {
	case StoragePostgres:
		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, err
		}

		if repo, err = prepare(ctx, logger, opts.Storage, store.NewPostgresStore(pool)); err != nil {
			return nil, err
		}
	case StorageMySQL:
		db, err := store.OpenMySQL(opts.DatabaseURL, mysqlMaxConns)
		if err != nil {
			return nil, err
		}

		if repo, err = prepare(ctx, logger, opts.Storage, store.NewMySQLStore(db)); err != nil {
			return nil, err
		}
	default:
		repo = store.NewMemoryStore()
	}

	logger.Info("link storage ready", zap.String("storage", opts.Storage))

	if ttl := opts.CacheDuration(); ttl > 0 {
		rdb, err := do.Invoke[*Redis](i)
		if err != nil {
			return nil, err
		}

		repo = store.NewRedisCacheRepository(repo, rdb.Client, ttl)
	}

	return repo, nil
}

// prepare waits for the database and creates the schema. The store is shut down on failure.
func prepare(ctx context.Context, logger *zap.Logger, name string, s schemaStore) (links.Repository, error) {
	err := waitFor(ctx, logger, name, s.Ping)
	if err == nil {
		err = s.EnsureSchema(ctx)
	}

	if err != nil {
		_ = s.Shutdown()

		return nil, err
	}

	return s, nil
}

// waitFor retries ping with backoff until the dependency answers or ctx expires.
func waitFor(ctx context.Context, logger *zap.Logger, name string, ping func(context.Context) error) error {
	return retry.Do(func() error {
		return ping(ctx)
	},
		retry.Attempts(startupAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.MaxDelay(maxStartupDelay),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("dependency not ready",
				zap.String("dependency", name),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
		retry.Context(ctx),
	)
}
