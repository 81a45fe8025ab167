package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the leasehold command tree. Each call returns a fresh
// tree with its own flag state.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "leasehold",
		Short: "Session client for the rental marketplace API",
		Long: `leasehold signs you in to the rental marketplace API and keeps your session.

It logs in or registers tenants, owners and admins, remembers the session token
between runs, revalidates it against the server, and shows where each role's
dashboard lives. Any other API endpoint can be called with the stored session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withCommandContext(ctx, cc))
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.leasehold/config.yaml)")
	flags.String("api-url", "", "marketplace API base URL (overrides api.base_url)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("format", "", "output format: text, json, yaml")
	flags.Bool("no-color", false, "disable colored output")

	rootCmd.AddCommand(
		newAuthCmd(),
		newRouteCmd(),
		newAPICmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which is canceled on interrupt
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
