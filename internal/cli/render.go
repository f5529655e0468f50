package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/restokit/core/restaurant"
	"github.com/dmitrymomot/restokit/core/session"
)

func jsonTo(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func (a *App) renderUser(u *session.User) error {
	if a.jsonOut {
		return a.printer.JSON(publicUser(u))
	}
	if u == nil {
		a.printer.Warning("The backend did not return user details")
		return nil
	}
	a.printer.KeyValue("Email", u.Email)
	a.printer.KeyValue("Name", dash(u.Name))
	a.printer.KeyValue("Roles", dash(strings.Join(u.Roles, ", ")))
	a.printer.KeyValue("Active", u.IsActive)
	return nil
}

// publicUser drops the echoed API key before printing.
func publicUser(u *session.User) *session.User {
	if u == nil {
		return nil
	}
	cp := u.Clone()
	cp.APIKey = ""
	return cp
}

func (a *App) renderRestaurant(r *restaurant.Restaurant) error {
	if a.jsonOut {
		return a.printer.JSON(r)
	}
	a.printer.KeyValue("ID", r.ID)
	a.printer.KeyValue("Name", dash(r.Name))
	a.printer.KeyValue("Address", dash(r.Address))
	a.printer.KeyValue("Phone", dash(r.Phone))
	a.printer.KeyValue("Created", dash(r.CreatedAt))
	a.printer.KeyValue("Updated", dash(r.UpdatedAt))
	return nil
}

func (a *App) renderPage(p *restaurant.Page) error {
	if a.jsonOut {
		return a.printer.JSON(p)
	}
	if len(p.Items) == 0 {
		a.printer.Info("No restaurants found")
		return nil
	}

	tbl := a.printer.NewTable("ID", "Name", "Address", "Phone")
	for _, r := range p.Items {
		tbl.AddRow(r.ID.String(), r.Name, r.Address, dash(r.Phone))
	}
	if err := tbl.Render(); err != nil {
		return err
	}

	summary := fmt.Sprintf("Showing %d of %d", len(p.Items), p.Total)
	if pg := p.Pagination; pg != nil {
		if pg.CurrentPage > 0 {
			summary += fmt.Sprintf(" (page %d", pg.CurrentPage)
			if pg.TotalPages > 0 {
				summary += fmt.Sprintf(" of %d", pg.TotalPages)
			}
			summary += ")"
		}
		if pg.HasMore {
			summary += ", more available"
		}
	}
	a.printer.Print("")
	a.printer.Info("%s", summary)
	return nil
}
