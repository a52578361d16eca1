// Package config handles configuration loading for edgar-ux.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Cache   CacheConfig   `mapstructure:"cache"   yaml:"cache"`
	SEC     SECConfig     `mapstructure:"sec"     yaml:"sec"`
	Search  SearchConfig  `mapstructure:"search"  yaml:"search"`
	Server  ServerConfig  `mapstructure:"server"  yaml:"server"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// CacheConfig holds filing-cache settings.
type CacheConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"` // cache root, e.g. /tmp/sec-filings
}

// SECConfig holds SEC EDGAR client settings.
//
// SEC requires a User-Agent identifying the requester and enforces a rate
// limit of 10 requests/second per user agent.
type SECConfig struct {
	UserAgent         string `mapstructure:"user_agent"           yaml:"user_agent"`
	RequestTimeoutSec int    `mapstructure:"request_timeout_sec"  yaml:"request_timeout_sec"`
	RateLimitPerSec   int    `mapstructure:"rate_limit_per_sec"   yaml:"rate_limit_per_sec"`
	FreshWindowSec    int    `mapstructure:"fresh_window_sec"     yaml:"fresh_window_sec"`
	StaleWindowSec    int    `mapstructure:"stale_window_sec"     yaml:"stale_window_sec"`
	FanoutWorkers     int    `mapstructure:"fanout_workers"       yaml:"fanout_workers"`
	FanoutTimeoutSec  int    `mapstructure:"fanout_timeout_sec"   yaml:"fanout_timeout_sec"`
	RecentPageSize    int    `mapstructure:"recent_page_size"     yaml:"recent_page_size"`
	IncludeOwnership  bool   `mapstructure:"include_ownership"    yaml:"include_ownership"` // include forms 3/4/5 in the CORE set
}

// SearchConfig holds content-search settings.
type SearchConfig struct {
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// ServerConfig holds MCP server transport settings.
type ServerConfig struct {
	Transport string `mapstructure:"transport" yaml:"transport"` // "stdio" or "http"
	Host      string `mapstructure:"host"      yaml:"host"`
	Port      int    `mapstructure:"port"      yaml:"port"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // "debug", "info", "warn", "error"
}

// RequestTimeout returns the upstream request timeout as a duration.
func (c SECConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// FreshWindow returns the freshness-cache fresh window as a duration.
func (c SECConfig) FreshWindow() time.Duration {
	return time.Duration(c.FreshWindowSec) * time.Second
}

// StaleWindow returns the freshness-cache stale-acceptable window.
func (c SECConfig) StaleWindow() time.Duration {
	return time.Duration(c.StaleWindowSec) * time.Second
}

// FanoutTimeout returns the overall multi-form fan-out timeout.
func (c SECConfig) FanoutTimeout() time.Duration {
	return time.Duration(c.FanoutTimeoutSec) * time.Second
}

// Timeout returns the search wall-clock budget as a duration.
func (c SearchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.edgar-ux/config.yaml (home directory)
//  3. /etc/edgar-ux/config.yaml (system)
//
// Environment variables override config file values.
// Format: EDGARUX_<SECTION>_<KEY>, e.g., EDGARUX_CACHE_DIR
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".edgar-ux"))
	v.AddConfigPath("/etc/edgar-ux")

	v.SetEnvPrefix("EDGARUX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found: fall back to defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("EDGARUX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("cache.dir", "/tmp/sec-filings")

	v.SetDefault("sec.user_agent", "edgar-ux/1.0 (github.com/bxxd/mcp-edgar-ux)")
	v.SetDefault("sec.request_timeout_sec", 30)
	v.SetDefault("sec.rate_limit_per_sec", 8)
	v.SetDefault("sec.fresh_window_sec", 30)
	v.SetDefault("sec.stale_window_sec", 7200)
	v.SetDefault("sec.fanout_workers", 4)
	v.SetDefault("sec.fanout_timeout_sec", 45)
	v.SetDefault("sec.recent_page_size", 100)
	v.SetDefault("sec.include_ownership", false)

	v.SetDefault("search.timeout_sec", 30)

	v.SetDefault("server.transport", "stdio")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 6660)

	v.SetDefault("logging.level", "info")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
