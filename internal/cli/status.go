package cli

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/restokit/core/gateway"
	"github.com/dmitrymomot/restokit/core/session"
)

// statusReport is the --json shape of the status command.
type statusReport struct {
	BaseURL       string            `json:"base_url"`
	Reachable     bool              `json:"reachable"`
	Authenticated bool              `json:"authenticated"`
	User          *session.User     `json:"user,omitempty"`
	Restaurants   int               `json:"restaurants"`
	RateLimit     *rateLimitJSON    `json:"rate_limit,omitempty"`
	Dependencies  map[string]string `json:"dependencies,omitempty"`
	Errors        []string          `json:"errors,omitempty"`
}

type rateLimitJSON struct {
	Remaining int        `json:"remaining"`
	Reset     *time.Time `json:"reset,omitempty"`
}

func (a *App) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connectivity, identity and rate-limit state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.clients(ctx); err != nil {
				return err
			}

			report := statusReport{BaseURL: a.gw.BaseURL(), Reachable: true}
			var userErr, listErr error

			g, gctx := errgroup.WithContext(ctx)
			if a.gw.HasValidCredential() {
				g.Go(func() error {
					report.User, userErr = a.session.CurrentUser(gctx)
					return fatalStatusErr(userErr)
				})
			}
			g.Go(func() error {
				page, err := a.restaurants.List(gctx, 1, 1)
				if err == nil {
					report.Restaurants = page.Total
				}
				listErr = err
				return fatalStatusErr(err)
			})
			deps := slices.Sorted(maps.Keys(a.checks))
			results := make([]error, len(deps))
			for i, name := range deps {
				check := a.checks[name]
				g.Go(func() error {
					results[i] = check(gctx)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				report.Reachable = false
				report.Errors = append(report.Errors, err.Error())
				if a.jsonOut {
					_ = a.printer.JSON(report)
				}
				return err
			}

			report.Authenticated = a.gw.HasValidCredential() && userErr == nil
			for _, err := range []error{userErr, listErr} {
				if err != nil {
					report.Errors = append(report.Errors, err.Error())
				}
			}
			if len(deps) > 0 {
				report.Dependencies = make(map[string]string, len(deps))
				for i, name := range deps {
					report.Dependencies[name] = "ok"
					if results[i] != nil {
						report.Dependencies[name] = results[i].Error()
					}
				}
			}
			if info, ok := a.gw.RateLimit(); ok {
				report.RateLimit = &rateLimitJSON{Remaining: info.Remaining}
				if info.HasReset {
					reset := info.Reset
					report.RateLimit.Reset = &reset
				}
			}

			if a.jsonOut {
				return a.printer.JSON(report)
			}
			a.renderStatus(report)
			return nil
		},
	}
}

// fatalStatusErr stops the other checks only when the backend is unreachable.
func fatalStatusErr(err error) error {
	if errors.Is(err, gateway.ErrConnection) {
		return err
	}
	return nil
}

func (a *App) renderStatus(r statusReport) {
	p := a.printer
	p.Header("Status")
	p.KeyValue("Backend", p.StatusBadge("connected")+" "+r.BaseURL)

	switch {
	case r.Authenticated && r.User != nil:
		p.KeyValue("Session", p.StatusBadge("authenticated")+" "+r.User.DisplayName())
	case r.Authenticated:
		p.KeyValue("Session", p.StatusBadge("authenticated"))
	default:
		p.KeyValue("Session", p.StatusBadge("anonymous"))
	}
	p.KeyValue("Restaurants", r.Restaurants)

	if rl := r.RateLimit; rl != nil {
		badge := "ok"
		if rl.Remaining < lowRateLimit {
			badge = "limited"
		}
		p.KeyValue("Rate limit", fmt.Sprintf("%s %d requests left", p.StatusBadge(badge), rl.Remaining))
		if rl.Reset != nil {
			p.KeyValue("Resets at", rl.Reset.Local().Format(time.RFC1123))
		}
	}

	for _, name := range slices.Sorted(maps.Keys(r.Dependencies)) {
		state := r.Dependencies[name]
		if state == "ok" {
			p.KeyValue(name, p.StatusBadge("ok"))
		} else {
			p.KeyValue(name, p.StatusBadge("error")+" "+state)
		}
	}

	for _, msg := range r.Errors {
		p.Warning("%s", msg)
	}
}
