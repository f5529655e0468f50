package gateway

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrymomot/restokit/core/credential"
)

// Config holds environment-based gateway settings.
type Config struct {
	BaseURL          string        `env:"API_BASE_URL,required,notEmpty"`
	CredentialHeader string        `env:"API_CREDENTIAL_HEADER" envDefault:"X-API-KEY"`
	CacheTTL         time.Duration `env:"API_CACHE_TTL" envDefault:"30s"`
	CacheSize        int           `env:"API_CACHE_SIZE" envDefault:"512"`
	RequestTimeout   time.Duration `env:"API_REQUEST_TIMEOUT" envDefault:"0s"`
	ResourceFamilies []string      `env:"API_RESOURCE_FAMILIES" envDefault:"/restaurants" envSeparator:","`
	MaxRPS           float64       `env:"API_MAX_RPS" envDefault:"0"`
}

// Options converts cfg into gateway options.
func (cfg Config) Options() []Option {
	opts := []Option{
		WithCredentialHeader(cfg.CredentialHeader),
		WithCacheTTL(cfg.CacheTTL),
		WithCacheSize(cfg.CacheSize),
		WithTimeout(cfg.RequestTimeout),
	}
	if len(cfg.ResourceFamilies) > 0 {
		opts = append(opts, WithResourceFamilies(cfg.ResourceFamilies...))
	}
	if cfg.MaxRPS > 0 {
		burst := int(cfg.MaxRPS)
		if burst < 1 {
			burst = 1
		}
		opts = append(opts, WithLimiter(rate.NewLimiter(rate.Limit(cfg.MaxRPS), burst)))
	}
	return opts
}

// NewFromConfig builds a Gateway from cfg. Extra options are applied after the config.
func NewFromConfig(cfg Config, store credential.Store, log *slog.Logger, opts ...Option) (*Gateway, error) {
	all := append(cfg.Options(), WithStore(store), WithLogger(log))
	return New(cfg.BaseURL, append(all, opts...)...)
}
