// SPDX-License-Identifier: MPL-2.0

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name, used for the config directory.
	AppName = "kbox"
	// ConfigFileName is the config file name without extension.
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
)

//go:embed config_schema.cue
var configSchema string

type (
	// Config is the resolved kbox configuration.
	Config struct {
		// Provider is the provider name ("machine" or "daemon").
		Provider string `mapstructure:"provider" json:"provider" toml:"provider"`
		// Engine is the backend engine name.
		Engine string `mapstructure:"engine" json:"engine" toml:"engine"`
		// Machine is the VM name for the machine provider.
		Machine string `mapstructure:"machine" json:"machine" toml:"machine"`
		// UI holds presentation settings.
		UI UIConfig `mapstructure:"ui" json:"ui" toml:"ui"`
	}

	// UIConfig holds presentation settings.
	UIConfig struct {
		// Verbose enables debug-level logging.
		Verbose bool `mapstructure:"verbose" json:"verbose" toml:"verbose"`
	}
)

// DefaultConfig returns the built-in defaults: a docker-machine VM named
// "kbox" driving the docker engine.
func DefaultConfig() *Config {
	return &Config{
		Provider: "machine",
		Engine:   "docker",
		Machine:  "kbox",
	}
}

// ConfigDir returns the kbox configuration directory using platform
// conventions: %APPDATA% on Windows, ~/Library/Application Support on macOS,
// and $XDG_CONFIG_HOME (defaulting to ~/.config) elsewhere.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string
	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// Load reads configuration from defaults, the config file (when present),
// and KBOX_* environment variables, then validates the result against the
// embedded schema.
func Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("provider", defaults.Provider)
	v.SetDefault("engine", defaults.Engine)
	v.SetDefault("machine", defaults.Machine)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	v.SetEnvPrefix("KBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := configFilePath(); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read config file %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks a Config against the embedded CUE schema.
func Validate(cfg *Config) error {
	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}
	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))

	unified := schema.Unify(ctx.Encode(cfg))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// WriteDefault seeds a commented TOML config file at the default location
// and returns its path. An existing file is left untouched.
func WriteDefault() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("encode default configuration: %w", err)
	}
	header := "# kbox configuration. Values can be overridden via KBOX_* env vars.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return "", fmt.Errorf("write config file: %w", err)
	}
	return path, nil
}

// configFilePath resolves the active config file path, honoring the
// --config flag override. Empty means no file is consulted.
func configFilePath() string {
	if configFileOverride != "" {
		return configFileOverride
	}
	dir, err := ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
}
