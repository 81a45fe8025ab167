package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/leasehold/internal/version"
)

func newVersionCmd() *cobra.Command {
	var verbose bool

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print version information including version number, git commit,
build date, Go version, and platform.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetInfo()

			cc, err := commandContextFrom(cmd)
			if err != nil {
				return err
			}

			// Structured output
			if cc.Config.Output.Format != "text" {
				f, err := cc.Formatter(cmd)
				if err != nil {
					return err
				}
				return f.Format(info)
			}

			out := cmd.OutOrStdout()
			if verbose {
				fmt.Fprintln(out, cc.Styles().Title.Render("leasehold"))
				fmt.Fprintln(out, info.String())
				return nil
			}

			// Default output (short version only)
			fmt.Fprintf(out, "leasehold %s\n", info.Short())
			return nil
		},
	}

	versionCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed version information")
	return versionCmd
}
