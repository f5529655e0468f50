package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Command returns the root command with every subcommand attached.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Restaurant API command-line client",
		Long: `restoctl manages restaurant records behind an authenticated REST API.

Configuration is read from the environment (and a .env file):
  API_BASE_URL        backend base URL (required, or --base-url)
  CREDENTIAL_STORE    memory, file, encrypted or redis

Example usage:
  restoctl login ana@example.com
  restoctl restaurants list --page 2
  restoctl restaurants quick-search pizza
  restoctl status`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.BoolVar(&a.jsonOut, "json", false, "output as JSON")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "suppress informational output")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&a.colorMode, "color", "auto", "color mode: auto, always, never")
	flags.StringVar(&a.baseURL, "base-url", "", "backend base URL (overrides API_BASE_URL)")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "write gateway metrics in Prometheus text format on exit")

	root.AddCommand(
		a.loginCommand(),
		a.registerCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.refreshKeyCommand(),
		a.statusCommand(),
		a.restaurantsCommand(),
		a.versionCommand(),
	)
	return root
}

func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.jsonOut {
				return jsonTo(cmd, map[string]string{"version": a.version})
			}
			fmt.Fprintln(cmd.OutOrStdout(), appName+" "+a.version)
			return nil
		},
	}
}
