package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/leasehold/internal/api"
	"github.com/felixgeelhaar/leasehold/internal/config"
	"github.com/felixgeelhaar/leasehold/internal/log"
	"github.com/felixgeelhaar/leasehold/internal/session"
	"github.com/felixgeelhaar/leasehold/internal/tokenstore"
	"github.com/felixgeelhaar/leasehold/internal/ux"
)

// CommandContext holds everything a command needs that was resolved from
// flags, environment and the config file. It is built once per invocation
// by the root command and travels in the command's context.Context, so
// nothing here is a package-level variable.
type CommandContext struct {
	Config  *config.Config
	NoColor bool

	Logger   *log.Logger
	Store    *tokenstore.FileStore
	Client   *api.Client
	Provider *session.Provider
}

// NewCommandContext loads configuration for cmd and wires the session stack.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger := log.New(log.Config{
		Level:       log.ParseLevel(cfg.Log.Level),
		Format:      log.ParseFormat(cfg.Log.Format),
		Output:      log.NewOutput(cmd.ErrOrStderr()),
		ServiceName: "leasehold",
	})
	log.SetDefaultLogger(logger)

	store := tokenstore.NewFileStore(cfg.Auth.TokenFile)
	client := api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithTokens(store),
		api.WithLogger(logger),
	)

	logger.Debug("configuration loaded",
		"config_file", cfg.File,
		"api_base_url", cfg.API.BaseURL,
		"token_file", cfg.Auth.TokenFile,
	)

	return &CommandContext{
		Config:  cfg,
		NoColor: noColor,
		Logger:  logger,
		Store:   store,
		Client:  client,
		Provider: session.NewProvider(func() (*session.Session, error) {
			return session.New(client, store, logger), nil
		}),
	}, nil
}

// Formatter returns the output formatter selected by --format / output.format.
func (c *CommandContext) Formatter(cmd *cobra.Command) (ux.Formatter, error) {
	return ux.NewFormatter(c.Config.Output.Format, &ux.FormatterOptions{
		Writer:  cmd.OutOrStdout(),
		NoColor: c.NoColor,
	})
}

// Styles returns the text styles honoring --no-color.
func (c *CommandContext) Styles() ux.Styles {
	if c.NoColor {
		return ux.PlainStyles()
	}
	return ux.DefaultStyles()
}

type commandContextKey struct{}

func withCommandContext(ctx context.Context, cc *CommandContext) context.Context {
	ctx = context.WithValue(ctx, commandContextKey{}, cc)
	return session.NewContext(ctx, cc.Provider)
}

// commandContextFrom returns the CommandContext installed by the root command.
func commandContextFrom(cmd *cobra.Command) (*CommandContext, error) {
	if ctx := cmd.Context(); ctx != nil {
		if cc, ok := ctx.Value(commandContextKey{}).(*CommandContext); ok {
			return cc, nil
		}
	}
	return nil, fmt.Errorf("command %q ran without configuration", cmd.CommandPath())
}
