// Package config handles configuration loading for the tracker.
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
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Scrape  ScrapeConfig  `mapstructure:"scrape"  yaml:"scrape"`
	Output  OutputConfig  `mapstructure:"output"  yaml:"output"`
	Track   TrackConfig   `mapstructure:"track"   yaml:"track"`
	Filter  FilterConfig  `mapstructure:"filter"  yaml:"filter"`
	News    NewsConfig    `mapstructure:"news"    yaml:"news"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// BrowserConfig holds Chrome session settings.
type BrowserConfig struct {
	Headless      bool   `mapstructure:"headless"       yaml:"headless"`
	WindowWidth   int    `mapstructure:"window_width"   yaml:"window_width"`
	WindowHeight  int    `mapstructure:"window_height"  yaml:"window_height"`
	NavTimeout    int    `mapstructure:"nav_timeout"    yaml:"nav_timeout"` // seconds
	ExecPath      string `mapstructure:"exec_path"      yaml:"exec_path"`   // optional explicit Chrome binary
	DisableImages bool   `mapstructure:"disable_images" yaml:"disable_images"`
}

// ScrapeConfig holds listing-page extraction settings.
type ScrapeConfig struct {
	URL           string `mapstructure:"url"            yaml:"url"`
	TopN          int    `mapstructure:"top_n"          yaml:"top_n"`
	RenderTimeout int    `mapstructure:"render_timeout" yaml:"render_timeout"` // seconds
	DebugShot     string `mapstructure:"debug_shot"     yaml:"debug_shot"`     // screenshot path on render timeout, empty disables
}

// OutputConfig holds CSV export settings.
type OutputConfig struct {
	Path      string `mapstructure:"path"      yaml:"path"`
	Timestamp bool   `mapstructure:"timestamp" yaml:"timestamp"`
}

// TrackConfig holds continuous tracking settings.
type TrackConfig struct {
	Interval int `mapstructure:"interval" yaml:"interval"` // seconds between captures
}

// FilterConfig holds per-cycle filter view settings.
type FilterConfig struct {
	MinPrice    float64 `mapstructure:"min_price"    yaml:"min_price"`
	MaxPrice    float64 `mapstructure:"max_price"    yaml:"max_price"`
	ShowGainers int     `mapstructure:"show_gainers" yaml:"show_gainers"`
	ShowLosers  int     `mapstructure:"show_losers"  yaml:"show_losers"`
}

// NewsConfig holds headline feed settings.
type NewsConfig struct {
	Feeds []string `mapstructure:"feeds" yaml:"feeds"`
	Limit int      `mapstructure:"limit" yaml:"limit"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// NavTimeoutDuration returns the navigation timeout as a duration.
func (b BrowserConfig) NavTimeoutDuration() time.Duration {
	return time.Duration(b.NavTimeout) * time.Second
}

// RenderTimeoutDuration returns the render wait timeout as a duration.
func (s ScrapeConfig) RenderTimeoutDuration() time.Duration {
	return time.Duration(s.RenderTimeout) * time.Second
}

// IntervalDuration returns the tracking interval as a duration.
func (t TrackConfig) IntervalDuration() time.Duration {
	return time.Duration(t.Interval) * time.Second
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.cryptotracker/config.yaml (home directory)
//  3. /etc/cryptotracker/config.yaml (system)
//
// Environment variables override config file values.
// Format: CRYPTOTRACKER_<SECTION>_<KEY>, e.g., CRYPTOTRACKER_SCRAPE_TOP_N
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file settings
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".cryptotracker"))
	v.AddConfigPath("/etc/cryptotracker")

	// Environment variable settings
	v.SetEnvPrefix("CRYPTOTRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("CRYPTOTRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	if c.Scrape.URL == "" {
		return fmt.Errorf("scrape.url must not be empty")
	}
	if c.Scrape.TopN <= 0 {
		return fmt.Errorf("scrape.top_n must be positive, got %d", c.Scrape.TopN)
	}
	if c.Scrape.RenderTimeout <= 0 {
		return fmt.Errorf("scrape.render_timeout must be positive, got %d", c.Scrape.RenderTimeout)
	}
	if c.Track.Interval <= 0 {
		return fmt.Errorf("track.interval must be positive, got %d", c.Track.Interval)
	}
	if c.Filter.MaxPrice > 0 && c.Filter.MinPrice > c.Filter.MaxPrice {
		return fmt.Errorf("filter.min_price %.2f exceeds filter.max_price %.2f",
			c.Filter.MinPrice, c.Filter.MaxPrice)
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Browser defaults
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.window_width", 1920)
	v.SetDefault("browser.window_height", 1080)
	v.SetDefault("browser.nav_timeout", 60)
	v.SetDefault("browser.disable_images", true)

	// Scrape defaults
	v.SetDefault("scrape.url", "https://coinmarketcap.com/")
	v.SetDefault("scrape.top_n", 10)
	v.SetDefault("scrape.render_timeout", 30)
	v.SetDefault("scrape.debug_shot", "debug_timeout.png")

	// Output defaults
	v.SetDefault("output.path", "crypto_prices.csv")
	v.SetDefault("output.timestamp", true)

	// Track defaults
	v.SetDefault("track.interval", 10)

	// Filter defaults
	v.SetDefault("filter.show_gainers", 5)
	v.SetDefault("filter.show_losers", 5)

	// News defaults
	v.SetDefault("news.feeds", []string{
		"https://www.coindesk.com/arc/outboundfeeds/rss/",
		"https://cointelegraph.com/rss",
		"https://decrypt.co/feed",
	})
	v.SetDefault("news.limit", 15)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
