package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/link-shortener/internal/ratelimit"
	"golang.org/x/sync/errgroup"
)

const (
	StatusOK        = "ok"
	StatusDegraded  = "degraded"
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	defaultTimeout = 2 * time.Second
)

// Checker defines the interface for checking service health.
type Checker interface {
	Ping(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// RedisChecker adapts redis.Client to Checker interface.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// Ping checks Redis connectivity.
func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Handler handles health check operations.
type Handler struct {
	checkers map[string]Checker
	timeout  time.Duration
}

// NewHandler creates a new health handler. Each checker is reported under its name.
func NewHandler(checkers map[string]Checker) *Handler {
	return &Handler{checkers: checkers, timeout: defaultTimeout}
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status       string            `doc:"ok when every dependency is healthy"  example:"ok"         json:"status"`
		Dependencies map[string]string `doc:"Per-dependency status"                                     json:"dependencies,omitempty"`
	}
}

// Check pings all dependencies concurrently. A failing dependency degrades the status
// but the endpoint itself still answers 200.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(h.checkers))
	)

	g, gctx := errgroup.WithContext(ctx)

	for name, checker := range h.checkers {
		g.Go(func() error {
			status := StatusHealthy
			if err := checker.Ping(gctx); err != nil {
				status = StatusUnhealthy
			}

			mu.Lock()
			results[name] = status
			mu.Unlock()

			return nil
		})
	}

	// Goroutines never return an error: failures are recorded in results instead.
	_ = g.Wait()

	resp := &Response{}
	resp.Body.Status = StatusOK

	if len(results) > 0 {
		resp.Body.Dependencies = results
	}

	for _, status := range results {
		if status != StatusHealthy {
			resp.Body.Status = StatusDegraded
		}
	}

	return resp, nil
}

// RegisterRoutes registers health check routes. Health checks never count against the
// request budget.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"Health"},
		Metadata:    ratelimit.Exempt(),
	}, h.Check)
}
