// Package cli implements the restoctl command tree.
//
// An App owns one invocation: it parses flags, loads Config from the
// environment, and builds the gateway, session manager and restaurant
// service on first use. Tests inject configuration and a credential store:
//
//	app := cli.New(
//		cli.WithOutput(&stdout, &stderr),
//		cli.WithConfig(cfg),
//		cli.WithStore(credential.NewMemoryStore()),
//	)
//	defer app.Close()
//
//	cmd := app.Command()
//	cmd.SetArgs([]string{"restaurants", "list", "--json"})
//	err := cmd.ExecuteContext(ctx)
//
// Close writes the gateway metrics to --metrics-file, when set, and closes
// the Redis client of the redis credential store.
package cli
