// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Crawler CrawlerConfig `mapstructure:"crawler"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlerConfig governs the polling loop and download pipeline.
type CrawlerConfig struct {
	BaseURL             string `mapstructure:"base_url"`
	StoryLimit          int    `mapstructure:"story_limit"`
	PollIntervalSeconds int    `mapstructure:"poll_interval_seconds"`
	DownloadDir         string `mapstructure:"download_dir"`
	DryRun              bool   `mapstructure:"dry_run"`
	LinkConcurrency     int    `mapstructure:"link_concurrency"`
}

// HTTPConfig configures the shared HTTP client.
type HTTPConfig struct {
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
	MaxRedirects    int    `mapstructure:"max_redirects"`
	MaxConnsPerHost int    `mapstructure:"max_conns_per_host"`
	UserAgent       string `mapstructure:"user_agent"`
}

// ServerConfig controls the ops HTTP endpoint. Port 0 disables it.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("YCRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.base_url", "https://news.ycombinator.com")
	v.SetDefault("crawler.story_limit", 30)
	v.SetDefault("crawler.poll_interval_seconds", 15)
	v.SetDefault("crawler.download_dir", "pages")
	v.SetDefault("crawler.dry_run", false)
	v.SetDefault("crawler.link_concurrency", 16)
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.max_redirects", 10)
	v.SetDefault("http.max_conns_per_host", 60)
	v.SetDefault("http.user_agent", "ycrawler/1.0 (+https://github.com/bormog/ycrawler)")
	v.SetDefault("server.port", 0)
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Crawler.BaseURL) == "" {
		return fmt.Errorf("crawler.base_url must be set")
	}
	if c.Crawler.StoryLimit <= 0 {
		return fmt.Errorf("crawler.story_limit must be > 0")
	}
	if c.Crawler.PollIntervalSeconds <= 0 {
		return fmt.Errorf("crawler.poll_interval_seconds must be > 0")
	}
	if strings.TrimSpace(c.Crawler.DownloadDir) == "" {
		return fmt.Errorf("crawler.download_dir must be set")
	}
	if c.Crawler.LinkConcurrency <= 0 {
		return fmt.Errorf("crawler.link_concurrency must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxRedirects <= 0 {
		return fmt.Errorf("http.max_redirects must be > 0")
	}
	if c.HTTP.MaxConnsPerHost <= 0 {
		return fmt.Errorf("http.max_conns_per_host must be > 0")
	}
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent must be set")
	}
	if c.Server.Port < 0 {
		return fmt.Errorf("server.port must be >= 0")
	}
	return nil
}

// PollInterval returns the idle time between polling cycles.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Crawler.PollIntervalSeconds) * time.Second
}

// RequestTimeout returns the per-fetch deadline.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// FrontPageURL is the address polled for top stories.
func (c Config) FrontPageURL() string {
	return strings.TrimRight(c.Crawler.BaseURL, "/")
}

// DiscussionURL is the address of the comment thread page, queried by story id.
func (c Config) DiscussionURL() string {
	return c.FrontPageURL() + "/item"
}
