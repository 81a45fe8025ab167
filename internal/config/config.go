// Package config handles leasehold configuration using Viper.
//
// Values come from, lowest precedence first: built-in defaults, the config
// file (~/.leasehold/config.yaml or --config), LEASEHOLD_* environment
// variables, and bound command-line flags.
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/felixgeelhaar/leasehold/internal/errors"
	"github.com/felixgeelhaar/leasehold/internal/tokenstore"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "LEASEHOLD"

// Keys
const (
	KeyAPIBaseURL   = "api.base_url"
	KeyAPITimeout   = "api.timeout"
	KeyTokenFile    = "auth.token_file"
	KeyLogLevel     = "log.level"
	KeyLogFormat    = "log.format"
	KeyOutputFormat = "output.format"
)

// flagKeys binds command-line flags to config keys.
var flagKeys = map[string]string{
	"api-url":   KeyAPIBaseURL,
	"log-level": KeyLogLevel,
	"format":    KeyOutputFormat,
}

// Config holds the application configuration.
type Config struct {
	API    APIConfig    `mapstructure:"api" yaml:"api" json:"api"`
	Auth   AuthConfig   `mapstructure:"auth" yaml:"auth" json:"auth"`
	Log    LogConfig    `mapstructure:"log" yaml:"log" json:"log"`
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-" yaml:"-" json:"-"`
}

// APIConfig describes the marketplace backend.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url" json:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
}

// AuthConfig describes where the session token lives.
type AuthConfig struct {
	TokenFile string `mapstructure:"token_file" yaml:"token_file" json:"token_file"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// OutputConfig holds display settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// Dir returns the leasehold configuration directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".leasehold"), nil
}

// Load reads configuration from file, environment and flags. A missing
// config file is not an error. flags may be nil.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case configPath == "" && stderrors.As(err, &notFound):
			// No default config file; defaults apply.
		case configPath != "" && stderrors.Is(err, fs.ErrNotExist):
			return nil, errors.NewConfigNotFoundError(configPath)
		default:
			return nil, errors.NewConfigInvalidError(v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewConfigInvalidError(v.ConfigFileUsed(), err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.Auth.TokenFile = expandHome(cfg.Auth.TokenFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIBaseURL, "http://localhost:5000/api")
	v.SetDefault(KeyAPITimeout, 30*time.Second)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyOutputFormat, "text")

	if path, err := tokenstore.DefaultPath(); err == nil {
		v.SetDefault(KeyTokenFile, path)
	}
}

// Validate checks values that would otherwise fail later and less clearly.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("invalid %s: %q", KeyAPIBaseURL, c.API.BaseURL)).
			WithSuggestion("Use an absolute http(s) URL such as http://localhost:5000/api")
	}
	if c.API.Timeout <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("invalid %s: %s", KeyAPITimeout, c.API.Timeout)).
			WithSuggestion("Use a positive duration such as 30s")
	}
	if c.Auth.TokenFile == "" {
		return errors.New(errors.ErrCodeConfigInvalid, KeyTokenFile+" is not set").
			WithSuggestion("Set auth.token_file or LEASEHOLD_AUTH_TOKEN_FILE")
	}
	switch c.Output.Format {
	case "text", "json", "yaml":
	default:
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("invalid %s: %q", KeyOutputFormat, c.Output.Format)).
			WithSuggestion("Use one of: text, json, yaml")
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
