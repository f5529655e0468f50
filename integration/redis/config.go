package redis

import "time"

// Config holds the Redis connection and credential key settings.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"1s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"10s"`

	// KeyPrefix namespaces the credential key, e.g. per user or per machine.
	KeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"restokit"`
	// CredentialTTL expires the stored credential. Zero keeps it until cleared.
	CredentialTTL time.Duration `env:"REDIS_CREDENTIAL_TTL" envDefault:"0s"`
}
