package gateway

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRateLimitReset     = "X-RateLimit-Reset"
	headerRetryAfter         = "Retry-After"

	// lowRateLimitThreshold triggers a warning log when fewer requests remain.
	lowRateLimitThreshold = 10
)

// RateLimitInfo is the most recent rate-limit state reported by the backend.
type RateLimitInfo struct {
	Remaining int
	Reset     time.Time
	HasReset  bool
	UpdatedAt time.Time
}

// parseRateLimit reads the rate-limit headers. ok is false when the backend
// did not send X-RateLimit-Remaining.
func parseRateLimit(h http.Header, now time.Time) (RateLimitInfo, bool) {
	raw := strings.TrimSpace(h.Get(headerRateLimitRemaining))
	if raw == "" {
		return RateLimitInfo{}, false
	}
	remaining, err := strconv.Atoi(raw)
	if err != nil {
		return RateLimitInfo{}, false
	}

	info := RateLimitInfo{Remaining: remaining, UpdatedAt: now}
	if reset, err := strconv.ParseInt(strings.TrimSpace(h.Get(headerRateLimitReset)), 10, 64); err == nil {
		info.Reset = time.Unix(reset, 0)
		info.HasReset = true
	}
	return info, true
}

// RateLimit returns the last observed rate-limit state.
func (g *Gateway) RateLimit() (RateLimitInfo, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rateLimit, g.hasRateLimit
}

func (g *Gateway) recordRateLimit(h http.Header) {
	info, ok := parseRateLimit(h, g.now())
	if !ok {
		return
	}

	g.mu.Lock()
	g.rateLimit = info
	g.hasRateLimit = true
	g.mu.Unlock()

	g.metrics.recordRateLimit(info)
	if info.Remaining < lowRateLimitThreshold {
		g.log.Warn("rate limit nearly exhausted",
			"remaining", info.Remaining,
			"reset", info.Reset,
		)
	}
	if g.onRateLimit != nil {
		g.onRateLimit(info)
	}
}
