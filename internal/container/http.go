package container

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/do"
	"github.com/serroba/link-shortener/internal/analytics"
	"github.com/serroba/link-shortener/internal/handlers"
	"github.com/serroba/link-shortener/internal/health"
	"github.com/serroba/link-shortener/internal/links"
	"github.com/serroba/link-shortener/internal/messaging"
	"github.com/serroba/link-shortener/internal/middleware"
	"github.com/serroba/link-shortener/internal/ratelimit"
	"go.uber.org/zap"
)

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, newAPI)
}

func newAPI(i *do.Injector) (huma.API, error) {
	opts := do.MustInvoke[*Options](i)
	logger := do.MustInvoke[*zap.Logger](i)
	router := do.MustInvoke[*chi.Mux](i)

	gate, err := do.Invoke[*ratelimit.Gate](i)
	if err != nil {
		return nil, err
	}

	if _, err := do.Invoke[*ratelimit.Janitor](i); err != nil {
		return nil, err
	}

	svc, err := do.Invoke[*links.Service](i)
	if err != nil {
		return nil, err
	}

	publishCreated, err := do.Invoke[messaging.Publish[analytics.LinkCreatedEvent]](i)
	if err != nil {
		return nil, err
	}

	publishAccessed, err := do.Invoke[messaging.Publish[analytics.LinkAccessedEvent]](i)
	if err != nil {
		return nil, err
	}

	checkers, err := healthCheckers(i, opts)
	if err != nil {
		return nil, err
	}

	reg := do.MustInvoke[*prometheus.Registry](i)
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	api := humachi.New(router, huma.DefaultConfig("Link Shortener", "1.0.0"))

	resolver := middleware.ClientIPResolver{TrustProxyHeaders: opts.TrustProxyHeaders}
	api.UseMiddleware(
		middleware.RequestMeta(api, resolver),
		middleware.RateLimiter(api, gate, resolver, logger),
	)

	handlers.RegisterRoutes(api, handlers.NewLinkHandler(
		svc,
		opts.PublicBaseURL(),
		publishCreated,
		publishAccessed,
		logger,
	))
	health.RegisterRoutes(api, health.NewHandler(checkers))

	return api, nil
}

func healthCheckers(i *do.Injector, opts *Options) (map[string]health.Checker, error) {
	checkers := map[string]health.Checker{}

	if opts.Storage != StorageMemory {
		repo, err := do.Invoke[links.Repository](i)
		if err != nil {
			return nil, err
		}

		if checker, ok := repo.(health.Checker); ok {
			checkers["database"] = checker
		}
	}

	if opts.Events || opts.CacheTTL > 0 {
		rdb, err := do.Invoke[*Redis](i)
		if err != nil {
			return nil, err
		}

		checkers["redis"] = health.NewRedisChecker(rdb.Client)
	}

	return checkers, nil
}
