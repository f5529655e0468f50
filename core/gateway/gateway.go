package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/restokit/core/cache"
	"github.com/dmitrymomot/restokit/core/credential"
	"github.com/dmitrymomot/restokit/core/logger"
)

const (
	DefaultCredentialHeader = "X-API-KEY"
	DefaultCacheTTL         = 30 * time.Second
	DefaultCacheSize        = 512
	DefaultResourceFamily   = "/restaurants"

	contentTypeJSON       = "application/json"
	contentTypeMergePatch = "application/merge-patch+json"
	headerRequestID       = "X-Request-ID"

	storeTimeout = 5 * time.Second
)

// Gateway is the single entry point for backend calls. It owns the active
// credential and the GET response cache, and maps every failure onto one of
// the Err* kinds. A Gateway is safe for concurrent use.
type Gateway struct {
	baseURL string
	header  string
	client  *http.Client
	timeout time.Duration
	store   credential.Store
	log     *slog.Logger

	cache     *cache.TTLCache[string, []byte]
	cacheTTL  time.Duration
	cacheSize int
	families  []string

	limiter           *rate.Limiter
	metrics           *Metrics
	onRateLimit       func(RateLimitInfo)
	unauthorizedHooks []func()
	now               func() time.Time

	mu           sync.RWMutex
	credential   string
	generation   uint64
	rateLimit    RateLimitInfo
	hasRateLimit bool
	hooksMu      sync.Mutex
}

// New builds a Gateway for baseURL and restores any persisted credential.
func New(baseURL string, opts ...Option) (*Gateway, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	g := &Gateway{
		baseURL:   base,
		header:    DefaultCredentialHeader,
		store:     credential.NewMemoryStore(),
		log:       logger.Nop(),
		cacheTTL:  DefaultCacheTTL,
		cacheSize: DefaultCacheSize,
		families:  []string{DefaultResourceFamily},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.client == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("gateway: create cookie jar: %w", err)
		}
		g.client = &http.Client{Jar: jar, Timeout: g.timeout}
	}
	g.cache = cache.NewTTLCache[string, []byte](g.cacheSize, g.cacheTTL)
	g.log = g.log.With(logger.Component("gateway"))

	g.restoreCredential()
	return g, nil
}

func parseBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrMissingBaseURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidBaseURL, raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// BaseURL returns the normalized backend base URL.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// Get issues a GET request, serving it from the cache when a fresh entry exists.
func (g *Gateway) Get(ctx context.Context, path string, query Query) (json.RawMessage, error) {
	return g.do(ctx, http.MethodGet, path, query, nil)
}

// Post issues a POST request. A nil body is sent as an empty JSON object.
func (g *Gateway) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	if body == nil {
		body = struct{}{}
	}
	return g.do(ctx, http.MethodPost, path, nil, body)
}

// Put issues a PUT request.
func (g *Gateway) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return g.do(ctx, http.MethodPut, path, nil, body)
}

// Patch issues a merge-patch request.
func (g *Gateway) Patch(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return g.do(ctx, http.MethodPatch, path, nil, body)
}

// Delete issues a DELETE request.
func (g *Gateway) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return g.do(ctx, http.MethodDelete, path, nil, nil)
}

// Decode unmarshals a gateway response into T.
func Decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("gateway: decode response: %w", err)
	}
	return v, nil
}

func (g *Gateway) do(ctx context.Context, method, path string, query Query, body any) (json.RawMessage, error) {
	target := g.resolve(path, query)
	key := method + ":" + target

	if method == http.MethodGet {
		if cached, ok := g.cache.Get(key); ok {
			g.metrics.recordCache(true)
			g.log.DebugContext(ctx, "cache hit", logger.Fingerprint(key))
			return bytes.Clone(cached), nil
		}
		g.metrics.recordCache(false)
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("gateway: wait for limiter: %w", err)
		}
	}

	token, gen := g.credentialState()
	req, err := g.newRequest(ctx, method, target, token, body)
	if err != nil {
		return nil, err
	}
	reqID := req.Header.Get(headerRequestID)

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		g.metrics.recordRequest(method, 0, time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		g.log.ErrorContext(ctx, "backend unreachable",
			logger.Method(method), logger.Path(path), logger.RequestID(reqID), logger.Error(err))
		return nil, connectionError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	g.metrics.recordRequest(method, resp.StatusCode, time.Since(start))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, connectionError(err)
	}

	g.recordRateLimit(resp.Header)

	g.log.DebugContext(ctx, "backend response",
		logger.Method(method),
		logger.Path(path),
		logger.StatusCode(resp.StatusCode),
		logger.RequestID(reqID),
		logger.Elapsed(start),
	)

	switch status := resp.StatusCode; {
	case status == http.StatusNoContent:
		g.invalidateFamily(path)
		return bytes.Clone(successMarker), nil
	case status == http.StatusUnauthorized:
		g.handleUnauthorized(ctx, method, path)
		return nil, unauthorizedError()
	case status == http.StatusTooManyRequests:
		wait, known := parseRetryAfter(resp.Header.Get(headerRetryAfter), g.now())
		return nil, rateLimitError(wait, known)
	case status < 200 || status > 299:
		gwErr := requestFailed(status, data)
		g.log.WarnContext(ctx, "backend request failed",
			logger.Method(method), logger.Path(path), logger.StatusCode(status),
			slog.String("message", gwErr.Message))
		return nil, gwErr
	}

	if len(bytes.TrimSpace(data)) == 0 {
		data = bytes.Clone(successMarker)
	} else if !json.Valid(data) {
		return nil, &Error{Kind: ErrRequestFailed, Status: resp.StatusCode, Message: msgInvalidJSON}
	}

	if method == http.MethodGet {
		g.cacheResponse(key, gen, data)
	} else {
		g.invalidateFamily(path)
	}
	return data, nil
}

func (g *Gateway) resolve(path string, query Query) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target := g.baseURL + path
	if qs := query.Encode(); qs != "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + qs
	}
	return target
}

// cacheResponse stores data unless the credential changed while the request
// was in flight. The generation check and the Put share the read lock, so a
// concurrent SetCredential either sees the entry in its purge or makes us skip it.
func (g *Gateway) cacheResponse(key string, gen uint64, data []byte) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.generation != gen {
		return
	}
	g.cache.Put(key, bytes.Clone(data))
}

func (g *Gateway) newRequest(ctx context.Context, method, target, token string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := encodeBody(body)
		if err != nil {
			return nil, &Error{Kind: ErrValidation, Message: "request body is not valid JSON", cause: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("gateway: build request: %w", err)
	}

	req.Header.Set("Accept", contentTypeJSON)
	switch method {
	case http.MethodPatch:
		req.Header.Set("Content-Type", contentTypeMergePatch)
	case http.MethodPost, http.MethodPut:
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	req.Header.Set(headerRequestID, uuid.NewString())
	if token != "" {
		req.Header.Set(g.header, token)
	}
	return req, nil
}

func encodeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case json.RawMessage:
		if !json.Valid(v) {
			return nil, errors.New("invalid raw JSON")
		}
		return v, nil
	case []byte:
		if !json.Valid(v) {
			return nil, errors.New("invalid raw JSON")
		}
		return v, nil
	default:
		return json.Marshal(v)
	}
}

func (g *Gateway) handleUnauthorized(ctx context.Context, method, path string) {
	g.log.WarnContext(ctx, "credential rejected by backend",
		logger.Method(method), logger.Path(path), logger.Secret("credential", g.Credential()))

	g.SetCredential(ctx, "")

	g.hooksMu.Lock()
	hooks := append([]func(){}, g.unauthorizedHooks...)
	g.hooksMu.Unlock()
	for _, hook := range hooks {
		hook()
	}
}

// OnUnauthorized registers fn to run after a 401 cleared the credential.
func (g *Gateway) OnUnauthorized(fn func()) {
	if fn == nil {
		return
	}
	g.hooksMu.Lock()
	defer g.hooksMu.Unlock()
	g.unauthorizedHooks = append(g.unauthorizedHooks, fn)
}
