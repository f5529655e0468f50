package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/restokit/core/config"
	"github.com/dmitrymomot/restokit/core/credential"
	"github.com/dmitrymomot/restokit/core/gateway"
	"github.com/dmitrymomot/restokit/core/logger"
	"github.com/dmitrymomot/restokit/core/restaurant"
	"github.com/dmitrymomot/restokit/core/session"
	"github.com/dmitrymomot/restokit/integration/redis"
	"github.com/dmitrymomot/restokit/internal/output"
)

const appName = "restoctl"

// Config is everything restoctl reads from the environment.
type Config struct {
	Log        logger.Config
	API        gateway.Config
	Credential credential.Config
	Redis      redis.Config
	Auth       session.Config
}

// App holds the flags and the lazily built clients of one invocation.
type App struct {
	out     io.Writer
	errOut  io.Writer
	version string
	cfg     *Config
	store   credential.Store

	// flags
	jsonOut     bool
	quiet       bool
	verbose     bool
	colorMode   string
	baseURL     string
	metricsFile string

	printer     *output.Printer
	log         *slog.Logger
	registry    *prometheus.Registry
	gw          *gateway.Gateway
	session     *session.Manager
	restaurants *restaurant.Service
	closers     []func() error
	// checks are optional dependency probes reported by the status command.
	checks map[string]func(context.Context) error

	rateWarnOnce sync.Once
}

// Option configures an App.
type Option func(*App)

// WithOutput redirects standard and error output.
func WithOutput(out, errOut io.Writer) Option {
	return func(a *App) {
		a.out = out
		a.errOut = errOut
	}
}

// WithVersion sets the version reported by the version command.
func WithVersion(v string) Option {
	return func(a *App) {
		a.version = v
	}
}

// WithConfig uses cfg instead of reading the environment.
func WithConfig(cfg Config) Option {
	return func(a *App) {
		a.cfg = &cfg
	}
}

// WithStore uses store instead of the one selected by configuration.
func WithStore(store credential.Store) Option {
	return func(a *App) {
		a.store = store
	}
}

// New creates an App. Clients are built when a command runs.
func New(opts ...Option) *App {
	a := &App{
		out:     os.Stdout,
		errOut:  os.Stderr,
		version: "dev",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Execute runs restoctl with os.Args and returns the process exit code.
func Execute(ctx context.Context, version string) int {
	app := New(WithVersion(version))
	defer func() {
		if err := app.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "close: %v\n", err)
		}
	}()

	if err := app.Command().ExecuteContext(ctx); err != nil {
		app.reportError(err)
		return 1
	}
	return 0
}

// Close flushes metrics and releases connections.
func (a *App) Close() error {
	var errs []error
	if a.registry != nil && a.metricsFile != "" {
		if err := prometheus.WriteToTextfile(a.metricsFile, a.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) reportError(err error) {
	p := a.printer
	if p == nil {
		p = output.NewPrinter(output.Options{Out: a.out, Err: a.errOut, ColorMode: output.ColorNever})
	}
	p.Error("%s", err.Error())

	var gwErr *gateway.Error
	if errors.As(err, &gwErr) && len(gwErr.Details) > 1 {
		for _, d := range gwErr.Details {
			p.Error("  - %s", d)
		}
	}
	if errors.Is(err, gateway.ErrUnauthorized) {
		p.Info("Run %q to sign in.", appName+" login <email>")
	}
}

// setup builds the printer and logger. It runs before every command.
func (a *App) setup() error {
	mode, err := output.ParseColorMode(a.colorMode)
	if err != nil {
		return err
	}
	a.printer = output.NewPrinter(output.Options{
		Out:       a.out,
		Err:       a.errOut,
		ColorMode: mode,
		Quiet:     a.quiet,
	})

	if a.cfg == nil {
		if a.baseURL != "" {
			// The flag wins over the environment and lets the required variable be omitted.
			if err := os.Setenv("API_BASE_URL", a.baseURL); err != nil {
				return err
			}
		}
		var cfg Config
		if err := config.Load(&cfg); err != nil {
			return err
		}
		a.cfg = &cfg
	} else if a.baseURL != "" {
		a.cfg.API.BaseURL = a.baseURL
	}

	logOpts := []logger.Option{
		logger.WithOutput(a.errOut),
		logger.WithConfig(a.cfg.Log),
		logger.WithAttr(slog.String("app", appName)),
	}
	if a.verbose {
		logOpts = append(logOpts, logger.WithLevel(slog.LevelDebug))
	}
	a.log = logger.New(logOpts...)
	return nil
}

// clients builds the gateway, session manager and restaurant service once.
func (a *App) clients(ctx context.Context) error {
	if a.gw != nil {
		return nil
	}

	store, err := a.credentialStore(ctx)
	if err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	gw, err := gateway.NewFromConfig(a.cfg.API, store, a.log,
		gateway.WithMetrics(gateway.NewMetrics(a.registry)),
		gateway.WithRateLimitObserver(a.onRateLimit),
	)
	if err != nil {
		return err
	}
	a.gw = gw

	a.session = session.NewFromConfig(gw, a.cfg.Auth, session.WithLogger(a.log))
	a.session.AddListener(func(st session.State) {
		a.log.Debug("session changed",
			slog.Bool("authenticated", st.IsAuthenticated),
			logger.Email(emailOf(st.User)),
		)
	})

	a.restaurants = restaurant.NewService(gw, restaurant.WithLogger(a.log))
	return nil
}

func (a *App) credentialStore(ctx context.Context) (credential.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	if !strings.EqualFold(strings.TrimSpace(a.cfg.Credential.Kind), credential.KindRedis) {
		return credential.NewFromConfig(a.cfg.Credential)
	}

	client, err := redis.Connect(ctx, a.cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("credential store: %w", err)
	}
	a.closers = append(a.closers, client.Close)
	a.checks = map[string]func(context.Context) error{"redis": redis.Healthcheck(client)}
	return redis.NewCredentialStore(client, a.cfg.Redis.KeyPrefix, a.cfg.Redis.CredentialTTL)
}

// lowRateLimit is the remaining-request count below which the CLI warns.
const lowRateLimit = 10

func (a *App) onRateLimit(info gateway.RateLimitInfo) {
	if info.Remaining >= lowRateLimit {
		return
	}
	a.rateWarnOnce.Do(func() {
		a.printer.Warning("Only %d API requests left in the current window", info.Remaining)
	})
}

func emailOf(u *session.User) string {
	if u == nil {
		return ""
	}
	return u.Email
}
