package session

import (
	"log/slog"
)

// Paths are the backend auth endpoints.
type Paths struct {
	Login    string
	Register string
	Logout   string
	Me       string
	Refresh  string
}

// DefaultPaths returns the standard endpoint layout.
func DefaultPaths() Paths {
	return Paths{
		Login:    "/auth/login",
		Register: "/auth/register",
		Logout:   "/auth/logout",
		Me:       "/auth/me",
		Refresh:  "/auth/refresh-api-key",
	}
}

// Config holds environment-based endpoint overrides.
type Config struct {
	LoginPath    string `env:"AUTH_LOGIN_PATH" envDefault:"/auth/login"`
	RegisterPath string `env:"AUTH_REGISTER_PATH" envDefault:"/auth/register"`
	LogoutPath   string `env:"AUTH_LOGOUT_PATH" envDefault:"/auth/logout"`
	MePath       string `env:"AUTH_ME_PATH" envDefault:"/auth/me"`
	RefreshPath  string `env:"AUTH_REFRESH_PATH" envDefault:"/auth/refresh-api-key"`
}

// Paths converts the config into Paths, keeping defaults for empty values.
func (c Config) Paths() Paths {
	p := DefaultPaths()
	if c.LoginPath != "" {
		p.Login = c.LoginPath
	}
	if c.RegisterPath != "" {
		p.Register = c.RegisterPath
	}
	if c.LogoutPath != "" {
		p.Logout = c.LogoutPath
	}
	if c.MePath != "" {
		p.Me = c.MePath
	}
	if c.RefreshPath != "" {
		p.Refresh = c.RefreshPath
	}
	return p
}

// Option is a functional option for configuring the Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithPaths overrides the auth endpoints.
func WithPaths(p Paths) Option {
	return func(m *Manager) {
		m.paths = p
	}
}

// NewFromConfig creates a Manager with endpoints taken from cfg.
func NewFromConfig(gw Gateway, cfg Config, opts ...Option) *Manager {
	return NewManager(gw, append([]Option{WithPaths(cfg.Paths())}, opts...)...)
}
