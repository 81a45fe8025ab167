package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/leasehold/internal/config"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "View leasehold configuration",
		Long: `View the effective leasehold configuration.

Values are merged from defaults, ~/.leasehold/config.yaml (or --config),
LEASEHOLD_* environment variables and flags, in that order.

Examples:
  # View current configuration
  leasehold config view

  # Show configuration file path
  leasehold config path
`,
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "view",
			Short: "Display current configuration",
			Args:  cobra.NoArgs,
			RunE:  runConfigView,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show configuration file path",
			Args:  cobra.NoArgs,
			RunE:  runConfigPath,
		},
	)
	return configCmd
}

func runConfigView(cmd *cobra.Command, args []string) error {
	cc, err := commandContextFrom(cmd)
	if err != nil {
		return err
	}

	// Use formatter for JSON/YAML output
	if cc.Config.Output.Format != "text" {
		f, err := cc.Formatter(cmd)
		if err != nil {
			return err
		}
		return f.Format(cc.Config)
	}

	// Text output
	out := cmd.OutOrStdout()
	file := cc.Config.File
	if file == "" {
		file = "(none, using defaults)"
	}
	fmt.Fprintf(out, "Configuration file: %s\n\n", file)

	data, err := yaml.Marshal(cc.Config)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	cc, err := commandContextFrom(cmd)
	if err != nil {
		return err
	}

	path := cc.Config.File
	if path == "" {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
	return err
}
