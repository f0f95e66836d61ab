package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
)

// Redis owns the shared client so the injector closes it on shutdown.
type Redis struct {
	*redis.Client
}

// Shutdown closes the client.
func (r *Redis) Shutdown() error {
	return r.Close()
}

// RedisPackage provides the Redis client. Nothing connects until a component needs it.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Redis, error) {
		opts := do.MustInvoke[*Options](i)

		return &Redis{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}
