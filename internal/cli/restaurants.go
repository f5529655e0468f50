package cli

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/restokit/core/restaurant"
)

func (a *App) restaurantsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "restaurants",
		Aliases: []string{"r", "restaurant"},
		Short:   "Manage restaurant records",
	}
	cmd.AddCommand(
		a.restaurantListCommand(),
		a.restaurantGetCommand(),
		a.restaurantCreateCommand(),
		a.restaurantUpdateCommand(),
		a.restaurantPatchCommand(),
		a.restaurantDeleteCommand(),
		a.restaurantSearchCommand(),
		a.restaurantQuickSearchCommand(),
		a.restaurantSimilarCommand(),
	)
	return cmd
}

// withService builds the clients before running fn.
func (a *App) withService(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.clients(cmd.Context()); err != nil {
			return err
		}
		return fn(cmd, args)
	}
}

func (a *App) restaurantListCommand() *cobra.Command {
	var page, perPage int
	var refresh bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List restaurants",
		Args:  cobra.NoArgs,
		RunE: a.withService(func(cmd *cobra.Command, args []string) error {
			if refresh {
				a.restaurants.ClearCache()
			}
			p, err := a.restaurants.List(cmd.Context(), page, perPage)
			if err != nil {
				return err
			}
			return a.renderPage(p)
		}),
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().IntVarP(&perPage, "per-page", "n", restaurant.DefaultPerPage, "items per page, at most 100")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "drop cached restaurant responses first")
	return cmd
}

func (a *App) restaurantGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one restaurant",
		Args:  cobra.ExactArgs(1),
		RunE: a.withService(func(cmd *cobra.Command, args []string) error {
			id, err := restaurant.ParseID(args[0])
			if err != nil {
				return err
			}
			r, err := a.restaurants.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.renderRestaurant(r)
		}),
	}
}

func inputFlags(cmd *cobra.Command, in *restaurant.Input) {
	cmd.Flags().StringVar(&in.Name, "name", "", "restaurant name")
	cmd.Flags().StringVar(&in.Address, "address", "", "street address")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone number")
}

func (a *App) restaurantCreateCommand() *cobra.Command {
	var in restaurant.Input
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a restaurant",
		Args:  cobra.NoArgs,
		RunE: a.withService(func(cmd *cobra.Command, args []string) error {
			r, err := a.restaurants.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			if !a.jsonOut {
				a.printer.Success("Restaurant %s created", r.ID)
			}
			return a.renderRestaurant(r)
		}),
	}
	inputFlags(cmd, &in)
	return cmd
}

func (a *App) restaurantUpdateCommand() *cobra.Command {
	var in restaurant.Input
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace every field of a restaurant",
		Args:  cobra.ExactArgs(1),
		RunE: a.withService(func(cmd *cobra.Command, args []string) error {
			id, err := restaurant.ParseID(args[0])
			if err != nil {
				return err
			}
			r, err := a.restaurants.Update(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			if !a.jsonOut {
				a.printer.Success("Restaurant %s updated", id)
			}
			return a.renderRestaurant(r)
		}),
	}
	inputFlags(cmd, &in)
	return cmd
}

func (a *App) restaurantPatchCommand() *cobra.Command {
	var name, address, phone string
	cmd := &cobra.Command{
		Use:   "patch <id>",
		Short: "Change selected fields of a restaurant",
		Args:  cobra.ExactArgs(1),
		RunE: a.withService(func(cmd *cobra.Command, args []string) error {
			id, err := restaurant.ParseID(args[0])
			if err != nil {
				return err
			}
			var ch restaurant.Changes
			if cmd.Flags().Changed("name") {
				ch.Name = &name
			}
			if cmd.Flags().Changed("address") {
				ch.Address = &address
			}
			if cmd.Flags().Changed("phone") {
				ch.Phone = &phone
			}
			if ch.IsEmpty() {
				a.printer.Warning("Nothing to change: pass --name, --address or --phone")
				return nil
			}
			r, err := a.restaurants.Patch(cmd.Context(), id, ch)
			if err != nil {
				return err
			}
			if !a.jsonOut {
				a.printer.Success("Restaurant %s updated", id)
			}
			return a.renderRestaurant(r)
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&address, "address", "", "new address")
	cmd.Flags().StringVar(&phone, "phone", "", "new phone number")
	return cmd
}

func (a *App) restaurantDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a restaurant",
		Args:  cobra.ExactArgs(1),
		RunE: a.withService(func(cmd *cobra.Command, args []string) error {
			id, err := restaurant.ParseID(args[0])
			if err != nil {
				return err
			}
			if err := a.restaurants.Delete(cmd.Context(), id); err != nil {
				return err
			}
			if a.jsonOut {
				return a.printer.JSON(map[string]any{"deleted": id})
			}
			a.printer.Success("Restaurant %s deleted", id)
			return nil
		}),
	}
}

func (a *App) restaurantSearchCommand() *cobra.Command {
	var p restaurant.SearchParams
	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search restaurants with filters",
		Args:  cobra.MaximumNArgs(1),
		RunE: a.withService(func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				p.Search = args[0]
			}
			page, err := a.restaurants.Search(cmd.Context(), p)
			if err != nil {
				return err
			}
			return a.renderPage(page)
		}),
	}
	f := cmd.Flags()
	f.StringVar(&p.Name, "name", "", "filter by name")
	f.StringVar(&p.Address, "address", "", "filter by address")
	f.StringVar(&p.Phone, "phone", "", "filter by phone")
	f.StringVar(&p.CreatedFrom, "created-from", "", "created on or after (YYYY-MM-DD)")
	f.StringVar(&p.CreatedTo, "created-to", "", "created on or before (YYYY-MM-DD)")
	f.StringVar(&p.UpdatedFrom, "updated-from", "", "updated on or after (YYYY-MM-DD)")
	f.StringVar(&p.UpdatedTo, "updated-to", "", "updated on or before (YYYY-MM-DD)")
	f.StringVar(&p.OrderBy, "order-by", "", "sort field")
	f.StringVar(&p.OrderDirection, "order", "", "sort direction: asc or desc")
	f.IntVarP(&p.Page, "page", "p", 0, "page number")
	f.IntVarP(&p.Limit, "limit", "n", 0, "results per page, at most 100")
	return cmd
}

func (a *App) restaurantQuickSearchCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "quick-search <query>",
		Short: "Fast lookup by name, at least two characters",
		Args:  cobra.ExactArgs(1),
		RunE: a.withService(func(cmd *cobra.Command, args []string) error {
			page, err := a.restaurants.QuickSearch(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			return a.renderPage(page)
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", restaurant.DefaultQuickLimit, "maximum results, at most 50")
	return cmd
}

func (a *App) restaurantSimilarCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "similar <id>",
		Short: "List restaurants similar to one",
		Args:  cobra.ExactArgs(1),
		RunE: a.withService(func(cmd *cobra.Command, args []string) error {
			id, err := restaurant.ParseID(args[0])
			if err != nil {
				return err
			}
			page, err := a.restaurants.Similar(cmd.Context(), id, limit)
			if err != nil {
				return err
			}
			return a.renderPage(page)
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", restaurant.DefaultSimilarLimit, "maximum results, at most 20")
	return cmd
}
