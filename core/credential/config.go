package credential

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/restokit/pkg/secrets"
)

// Store kinds accepted by Config.Kind.
const (
	KindMemory    = "memory"
	KindFile      = "file"
	KindEncrypted = "encrypted"
	KindRedis     = "redis"
)

// Config selects and configures a Store from the environment.
// KindRedis is resolved by the caller through integration/redis.
type Config struct {
	Kind      string `env:"CREDENTIAL_STORE" envDefault:"file"`
	File      string `env:"CREDENTIAL_FILE"`
	AppKey    string `env:"CREDENTIAL_APP_KEY"`
	DeviceKey string `env:"CREDENTIAL_DEVICE_KEY"`
}

// NewFromConfig builds a local Store for cfg.
func NewFromConfig(cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case KindMemory:
		return NewMemoryStore(), nil
	case KindFile, "":
		return NewFileStore(cfg.File)
	case KindEncrypted:
		appKey, err := secrets.ParseKey(cfg.AppKey)
		if err != nil {
			return nil, fmt.Errorf("%w: CREDENTIAL_APP_KEY: %v", ErrInvalidConfig, err)
		}
		deviceKey, err := secrets.ParseKey(cfg.DeviceKey)
		if err != nil {
			return nil, fmt.Errorf("%w: CREDENTIAL_DEVICE_KEY: %v", ErrInvalidConfig, err)
		}
		return NewEncryptedFileStore(cfg.File, appKey, deviceKey)
	default:
		return nil, fmt.Errorf("%w: unsupported store kind %q", ErrInvalidConfig, cfg.Kind)
	}
}
