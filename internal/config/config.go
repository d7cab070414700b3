// Package config loads the instance configuration from a JSON file. The file
// is created with defaults on first run, and any subset of keys may be
// present; missing keys fall back to their default. Configuration is read
// once per process and passed explicitly into components, never through
// globals.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/thefranke/rss-librarian/internal/token"
)

// DefaultIcon is the librarius icon shown by feed readers.
const DefaultIcon = "https://raw.githubusercontent.com/Warhammer40kGroup/wh40k-icon/master/src/svgs/librarius-02.svg"

// Config holds every tunable of a librarian instance.
type Config struct {
	ExtractContent       bool   `mapstructure:"extract_content"`
	MaxItems             int    `mapstructure:"max_items"`
	UseRSSFormat         bool   `mapstructure:"use_rss_format"`
	DirFeeds             string `mapstructure:"dir_feeds"`
	InstanceContact      string `mapstructure:"instance_contact"`
	Icon                 string `mapstructure:"icon"`
	Logo                 string `mapstructure:"logo"`
	CustomXSLT           string `mapstructure:"custom_xslt"`
	CustomCSS            string `mapstructure:"custom_css"`
	AdminID              string `mapstructure:"admin_id"`
	DeleteAbandonedAfter int    `mapstructure:"delete_abandoned_after"` // seconds
	DeleteBogusAfter     int    `mapstructure:"delete_bogus_after"`     // seconds
	URLBase              string `mapstructure:"url_base"`
}

// Load reads the configuration file at path, creating it with defaults when
// it does not exist. A missing admin_id is generated and persisted back so
// the admin token survives restarts.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "librarian.json"
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.SetDefault("extract_content", true)
	v.SetDefault("max_items", 100)
	v.SetDefault("use_rss_format", true)
	v.SetDefault("dir_feeds", "feeds")
	v.SetDefault("instance_contact", "")
	v.SetDefault("icon", DefaultIcon)
	v.SetDefault("logo", "")
	v.SetDefault("custom_xslt", "")
	v.SetDefault("custom_css", "")
	v.SetDefault("admin_id", "")
	v.SetDefault("delete_abandoned_after", int((365 * 24 * time.Hour).Seconds()))
	v.SetDefault("delete_bogus_after", int((30 * 24 * time.Hour).Seconds()))
	v.SetDefault("url_base", "https://localhost")

	freshFile := false
	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		freshFile = true
	}

	persist := freshFile
	if v.GetString("admin_id") == "" {
		adminID, err := token.New()
		if err != nil {
			return nil, fmt.Errorf("error generating admin token: %w", err)
		}
		v.Set("admin_id", adminID)
		persist = true
	}

	if persist {
		if err := v.WriteConfigAs(path); err != nil {
			return nil, fmt.Errorf("error writing config file: %w", err)
		}
		slog.Info("Configuration written", "path", path, "fresh", freshFile)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// AbandonedAfter returns the long retention window after which a feed is
// deleted regardless of content.
func (c *Config) AbandonedAfter() time.Duration {
	return time.Duration(c.DeleteAbandonedAfter) * time.Second
}

// BogusAfter returns the short retention window after which a feed with at
// most one item is treated as accidental.
func (c *Config) BogusAfter() time.Duration {
	return time.Duration(c.DeleteBogusAfter) * time.Second
}

// FeedLogo returns the logo URL, defaulting to the icon when unset so the
// Atom logo element is always populated.
func (c *Config) FeedLogo() string {
	if c.Logo != "" {
		return c.Logo
	}
	return c.Icon
}
