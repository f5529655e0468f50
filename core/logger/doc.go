// Package logger provides slog-based logger construction and attribute helpers
// shared by the SDK components and the CLI.
//
// # Basic Usage
//
//	log := logger.New(
//		logger.WithDevelopment("restoctl"),
//		logger.WithLevel(slog.LevelDebug),
//	)
//
//	log.Info("request completed",
//		logger.Component("gateway"),
//		logger.Method(http.MethodGet),
//		logger.Path("/restaurants"),
//		logger.StatusCode(http.StatusOK),
//	)
//
// Environment-driven setup uses Config together with the config package:
//
//	var cfg logger.Config
//	config.MustLoad(&cfg)
//	log := logger.New(logger.WithConfig(cfg))
//
// # Attribute Helpers
//
// Helpers return an empty slog.Attr for empty input, which slog omits. This keeps
// call sites free of nil checks:
//
//	log.Warn("credential persistence failed", logger.Error(err))
//
// Secret never writes the full value, only a short preview and its length:
//
//	log.Debug("credential installed", logger.Secret("credential", token))
//
// Components that accept an optional *slog.Logger fall back to Nop.
package logger
