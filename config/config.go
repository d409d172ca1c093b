package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Defaults applied by Default and Load.
const (
	DefaultBaseURL          = "https://www.api.auth-tower.com"
	DefaultPathPrefix       = "/api/v1/"
	DefaultRefreshThreshold = 300
)

// ErrMissingTenantID is returned by Validate when no tenant id is configured.
var ErrMissingTenantID = errors.New("config: tenant id is required")

// Config holds all SDK configuration.
// Tags use mapstructure for Viper unmarshalling; environment variables are
// bound with the TOWER_ prefix (e.g. TOWER_TENANT_ID).
type Config struct {
	BaseURL    string `mapstructure:"base_url"`
	PathPrefix string `mapstructure:"path_prefix"`

	// TenantID is the tenant the SDK is constructed for. Required.
	TenantID string `mapstructure:"tenant_id"`

	// ClientID and ClientSecret are required for client-credentials flows
	// and optional otherwise.
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`

	// RefreshThreshold is the number of seconds before expiry at which a
	// proactive token refresh is attempted.
	RefreshThreshold int `mapstructure:"refresh_threshold"`

	// DisableAutoRefresh turns proactive refresh off. The zero value keeps
	// it enabled, so a plain struct literal gets the intended behavior.
	DisableAutoRefresh bool `mapstructure:"disable_auto_refresh"`

	LogLevel  string `mapstructure:"log_level"`
	LogPretty bool   `mapstructure:"log_pretty"`
}

// Default returns a Config with all defaults applied and no identity set.
func Default() Config {
	return Config{
		BaseURL:          DefaultBaseURL,
		PathPrefix:       DefaultPathPrefix,
		RefreshThreshold: DefaultRefreshThreshold,
		LogLevel:         "info",
	}
}

// Load reads configuration from an optional yaml file, environment
// variables and defaults. An empty cfgFile falls back to a "tower" config
// file discovered in the working directory, if any.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("tower")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("TOWER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Registering the keys with empty defaults lets AutomaticEnv surface
	// env-only values through Unmarshal.
	v.SetDefault("tenant_id", "")
	v.SetDefault("client_id", "")
	v.SetDefault("client_secret", "")
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("path_prefix", DefaultPathPrefix)
	v.SetDefault("refresh_threshold", DefaultRefreshThreshold)
	v.SetDefault("disable_auto_refresh", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine, defaults and env vars apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &cfg, nil
}

// Normalize fills empty fields with defaults. It does not touch identity
// fields.
func (c *Config) Normalize() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.PathPrefix == "" {
		c.PathPrefix = DefaultPathPrefix
	}
	if c.RefreshThreshold <= 0 {
		c.RefreshThreshold = DefaultRefreshThreshold
	}
}

// Validate checks that required identifiers are present.
func (c *Config) Validate() error {
	if c.TenantID == "" {
		return ErrMissingTenantID
	}
	return nil
}
