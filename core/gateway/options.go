package gateway

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrymomot/restokit/core/credential"
)

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient replaces the default client. The caller owns its cookie jar and timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		if client != nil {
			g.client = client
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client. Ignored with WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = d
	}
}

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(log *slog.Logger) Option {
	return func(g *Gateway) {
		if log != nil {
			g.log = log
		}
	}
}

// WithStore sets the credential store. The stored credential is restored by New.
func WithStore(store credential.Store) Option {
	return func(g *Gateway) {
		if store != nil {
			g.store = store
		}
	}
}

// WithCredentialHeader overrides the credential header name (default X-API-KEY).
func WithCredentialHeader(name string) Option {
	return func(g *Gateway) {
		if name != "" {
			g.header = name
		}
	}
}

// WithCacheTTL sets how long GET responses stay fresh.
func WithCacheTTL(ttl time.Duration) Option {
	return func(g *Gateway) {
		if ttl > 0 {
			g.cacheTTL = ttl
		}
	}
}

// WithCacheSize bounds the number of cached responses.
func WithCacheSize(size int) Option {
	return func(g *Gateway) {
		if size > 0 {
			g.cacheSize = size
		}
	}
}

// WithResourceFamilies declares path prefixes used for coarse cache invalidation.
// A mutation under a declared family removes every cached response containing it.
func WithResourceFamilies(families ...string) Option {
	return func(g *Gateway) {
		g.families = normalizeFamilies(families)
	}
}

// WithLimiter paces outgoing requests. Cache hits are never delayed.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(g *Gateway) {
		g.limiter = limiter
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(g *Gateway) {
		g.metrics = m
	}
}

// WithRateLimitObserver is called with every rate-limit update read from a response.
func WithRateLimitObserver(fn func(RateLimitInfo)) Option {
	return func(g *Gateway) {
		g.onRateLimit = fn
	}
}

// WithUnauthorizedHook registers fn to run after a 401 cleared the credential.
func WithUnauthorizedHook(fn func()) Option {
	return func(g *Gateway) {
		if fn != nil {
			g.unauthorizedHooks = append(g.unauthorizedHooks, fn)
		}
	}
}
