package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// RestSuffix is the path suffix every Bitbucket Data Center REST root ends
// with. It is part of the server's API layout, not user-configurable.
const RestSuffix = "/rest"

// Environment variable names are a fixed external contract.
const (
	EnvServer = "BITBUCKET_SERVER"
	EnvToken  = "BITBUCKET_API_TOKEN"
)

// Common errors returned during configuration resolution.
var (
	// ErrMissingSetting is returned when a required setting has no value.
	ErrMissingSetting = errors.New("missing required setting")

	// ErrInvalidServerURL is returned when the server URL does not end
	// with the /rest suffix.
	ErrInvalidServerURL = errors.New("invalid server URL")
)

// Load loads the configuration from the environment and an optional file.
// Environment variables alone are sufficient; a config file only supplies
// defaults such as project, repo and logging options.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	_ = v.BindEnv("bitbucket.server", EnvServer)
	_ = v.BindEnv("bitbucket.token", EnvToken)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".bb-cli"))
		}
		v.AddConfigPath("/etc/bb-cli/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		// No config file is fine as long as the environment is set
		if configPath != "" {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	// Normalize once so every consumer sees the same base URL
	cfg.Bitbucket.Server = strings.TrimRight(strings.TrimSpace(cfg.Bitbucket.Server), "/")

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("bitbucket.timeout", 30)

	v.SetDefault("defaults.limit", 50)
	v.SetDefault("defaults.max_items", 200)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	server := strings.TrimSpace(cfg.Bitbucket.Server)
	if server == "" {
		return fmt.Errorf("%w: %s (or bitbucket.server in config)", ErrMissingSetting, EnvServer)
	}

	if strings.TrimSpace(cfg.Bitbucket.Token) == "" {
		return fmt.Errorf("%w: %s (or bitbucket.token in config)", ErrMissingSetting, EnvToken)
	}

	if !strings.HasSuffix(strings.TrimRight(server, "/"), RestSuffix) {
		return fmt.Errorf("%w: must end with '%s' (example: https://host/bitbucket/rest), got: %s",
			ErrInvalidServerURL, RestSuffix, server)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
