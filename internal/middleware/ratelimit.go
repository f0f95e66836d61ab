package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/netip"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/link-shortener/internal/ratelimit"
	"go.uber.org/zap"
)

// Admitter decides whether a request from a client may proceed.
type Admitter interface {
	Admit(ctx context.Context, id ratelimit.ClientID) error
}

// RateLimiter returns a Huma middleware that enforces the per-client request budget.
//
// Rejected clients get 429 with a Retry-After header. Unresolvable clients and store
// failures get a generic 500 and are logged, since they point at the deployment rather
// than the client. Operations marked with ratelimit.Exempt bypass the check.
func RateLimiter(
	api huma.API,
	gate Admitter,
	resolver ClientIPResolver,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if cfg := ratelimit.GetEndpointConfig(ctx); cfg != nil && cfg.Disabled {
			next(ctx)

			return
		}

		client := resolver.Resolve(ctx)

		err := gate.Admit(ctx.Context(), client)
		if err == nil {
			next(ctx)

			return
		}

		if exceeded, ok := ratelimit.AsExceeded(err); ok {
			ctx.SetHeader("Retry-After", strconv.FormatInt(exceeded.RetryAfter, 10))

			msg := fmt.Sprintf("rate limit exceeded: retry in %d seconds", exceeded.RetryAfter)
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, msg)

			return
		}

		logger.Error("admission check failed",
			zap.String("path", getOperationPath(ctx)),
			zap.String("method", ctx.Method()),
			zap.String("client_ip", clientLabel(client)),
			zap.String("remote_addr", ctx.RemoteAddr()),
			zap.Error(err),
		)

		_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error")
	}
}

// getOperationPath extracts the path from the operation, if available.
func getOperationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ""
}

func clientLabel(addr netip.Addr) string {
	if !addr.IsValid() {
		return "unresolved"
	}

	return addr.String()
}
