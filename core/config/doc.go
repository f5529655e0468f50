// Package config loads typed configuration from environment variables using
// caarlos0/env. Each configuration type is parsed once and cached.
//
// A .env file in the working directory is loaded through godotenv on first use.
// Variables already present in the environment take precedence.
//
//	type GatewayConfig struct {
//		BaseURL  string        `env:"API_BASE_URL,required,notEmpty"`
//		CacheTTL time.Duration `env:"API_CACHE_TTL" envDefault:"30s"`
//	}
//
//	var cfg GatewayConfig
//	if err := config.Load(&cfg); err != nil {
//		return err // API_BASE_URL missing fails here, visibly
//	}
//
// Different types are cached independently. MustLoad panics on failure and is
// meant for program startup only.
package config
