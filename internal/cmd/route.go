package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/leasehold/internal/api"
	"github.com/felixgeelhaar/leasehold/internal/session"
)

func newRouteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route <role>",
		Short: "Print the dashboard route for a role",
		Long: `Print the dashboard route a user with the given role lands on after login.

  tenant  /tenant
  owner   /owner
  admin   /admin

Any other role maps to the home route /.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(api.RoleTenant), string(api.RoleOwner), string(api.RoleAdmin)},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), session.DashboardRoute(api.Role(args[0])))
			return err
		},
	}
}
