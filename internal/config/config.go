// Package config provides configuration management for quay-pruner.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Default configuration values.
const (
	DefaultConfigDir  = ".config/quay-pruner"
	DefaultConfigFile = "config.yaml"
	DefaultTokenFile  = "~/.quaytoken"
	DefaultRepository = "quay.ceph.io/ceph-ci/ceph"
	DefaultShamanURL  = "https://shaman.ceph.com"
	EnvPrefix         = "QUAYPRUNER"
)

// ErrInvalidConfig is returned when the configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// validate is the shared validator instance.
var validate = validator.New()

// Config represents the full quay-pruner configuration.
type Config struct {
	Registry    RegistryConfig    `mapstructure:"registry" yaml:"registry" validate:"required"`
	Shaman      ShamanConfig      `mapstructure:"shaman" yaml:"shaman" validate:"required"`
	HTTP        HTTPConfig        `mapstructure:"http" yaml:"http"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
	Credentials CredentialsConfig `mapstructure:"credentials" yaml:"credentials"`
}

// RegistryConfig holds the Quay repository settings.
type RegistryConfig struct {
	Repository string `mapstructure:"repository" yaml:"repository" validate:"required"`
	Insecure   bool   `mapstructure:"insecure" yaml:"insecure"`
	PageSize   int    `mapstructure:"page_size" yaml:"page_size" validate:"min=1,max=100"`
	StartPage  int    `mapstructure:"start_page" yaml:"start_page" validate:"min=1"`
	PageLimit  int    `mapstructure:"page_limit" yaml:"page_limit" validate:"gtfield=StartPage"`
}

// ShamanConfig holds the build-status service settings.
type ShamanConfig struct {
	URL     string `mapstructure:"url" yaml:"url" validate:"required,url"`
	Project string `mapstructure:"project" yaml:"project" validate:"required"`
	Flavor  string `mapstructure:"flavor" yaml:"flavor" validate:"required"`
}

// HTTPConfig holds settings shared by both HTTP clients.
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=text logfmt json"`
}

// CredentialsConfig holds where the Quay token is looked up.
type CredentialsConfig struct {
	File    string `mapstructure:"file" yaml:"file"`
	Keyring bool   `mapstructure:"keyring" yaml:"keyring"`
}

// Validate checks the configuration for errors using struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Loader provides configuration loading.
type Loader struct {
	v       *viper.Viper
	path    string
	homeDir string
}

// NewLoader creates a new configuration loader.
func NewLoader() (*Loader, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home directory: %w", err)
	}

	configPath := filepath.Join(home, DefaultConfigDir, DefaultConfigFile)

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// QUAYPRUNER_REGISTRY_REPOSITORY overrides registry.repository, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	l := &Loader{
		v:       v,
		path:    configPath,
		homeDir: home,
	}

	l.setDefaults()

	return l, nil
}

// setDefaults sets all default configuration values using Viper.
// Every key needs a default so environment overrides reach Unmarshal.
func (l *Loader) setDefaults() {
	l.v.SetDefault("registry.repository", DefaultRepository)
	l.v.SetDefault("registry.insecure", false)
	l.v.SetDefault("registry.page_size", 100)
	l.v.SetDefault("registry.start_page", 1)
	l.v.SetDefault("registry.page_limit", 100000)
	l.v.SetDefault("shaman.url", DefaultShamanURL)
	l.v.SetDefault("shaman.project", "ceph")
	l.v.SetDefault("shaman.flavor", "default")
	l.v.SetDefault("http.timeout", "30s")
	l.v.SetDefault("log.format", "text")
	l.v.SetDefault("credentials.file", DefaultTokenFile)
	l.v.SetDefault("credentials.keyring", true)
}

// Load reads the configuration file if it exists and applies defaults and
// environment overrides. A missing file is not an error.
func (l *Loader) Load() (*Config, error) {
	if _, err := os.Stat(l.path); err == nil {
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Credentials.File = l.expandPath(cfg.Credentials.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Path returns the configuration file path.
func (l *Loader) Path() string {
	return l.path
}

// expandPath replaces ~ with the home directory.
func (l *Loader) expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(l.homeDir, path[2:])
	}
	if path == "~" {
		return l.homeDir
	}
	return path
}

// Settings returns the effective configuration as a nested map, with file
// values, environment overrides and defaults merged.
func (l *Loader) Settings() map[string]any {
	return l.v.AllSettings()
}
