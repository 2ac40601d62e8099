package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:wkbadge.db?cache=shared&mode=rwc,description=Local store database connection string"`
		SyncDSN         string `yaml:"sync_dsn" json:"sync_dsn" jsonschema:"description=Sync store database connection string, no sync tier if empty"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	API APIConfig `yaml:"api" json:"api" jsonschema:"description=WaniKani API client configuration"`

	Site struct {
		URL string `yaml:"url" json:"url" jsonschema:"default=https://www.wanikani.com,description=Site opened for home and review/lesson sessions"`
	} `yaml:"site" json:"site" jsonschema:"description=Site configuration"`

	Defaults DefaultsConfig `yaml:"defaults" json:"defaults" jsonschema:"description=Preferences written on first start"`

	Desktop DesktopConfig `yaml:"desktop" json:"desktop" jsonschema:"description=Desktop integration commands"`

	Locale struct {
		Lang     string `yaml:"lang" json:"lang" jsonschema:"default=en,description=Language of badge titles and notifications"`
		Timezone string `yaml:"timezone" json:"timezone" jsonschema:"description=Time zone for review times (e.g. Europe/Berlin), local if empty"`
	} `yaml:"locale" json:"locale" jsonschema:"description=Locale configuration"`
}

// APIConfig holds remote API client settings
type APIConfig struct {
	BaseURL  string        `yaml:"base_url" json:"base_url" jsonschema:"default=https://api.wanikani.com/v2,description=API base URL"`
	Revision string        `yaml:"revision" json:"revision" jsonschema:"default=20170710,description=Value of Wanikani-Revision header"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Request timeout"`
	Cooldown time.Duration `yaml:"cooldown" json:"cooldown" jsonschema:"default=5s,description=Minimum time between non-forced requests of the same resource"`
}

// DefaultsConfig holds preference values used when nothing is stored yet
type DefaultsConfig struct {
	APIKey         string `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable)"`
	UpdateInterval int    `yaml:"update_interval" json:"update_interval" jsonschema:"default=15,minimum=1,description=Refresh interval in minutes"`
	Notifications  bool   `yaml:"notifications" json:"notifications" jsonschema:"default=false,description=Show desktop notifications for new reviews"`
	NotifLife      int    `yaml:"notif_life" json:"notif_life" jsonschema:"default=5,minimum=1,description=Seconds a notification stays visible"`
}

// DesktopConfig holds external commands for the browser and notifications
type DesktopConfig struct {
	OpenCmd    string `yaml:"open_cmd" json:"open_cmd" jsonschema:"description=Command opening a URL, platform default if empty"`
	WindowsCmd string `yaml:"windows_cmd" json:"windows_cmd" jsonschema:"default=wmctrl -l,description=Command listing window titles, - to disable"`
	NotifyCmd  string `yaml:"notify_cmd" json:"notify_cmd" jsonschema:"default=notify-send,description=Command showing a notification"`
	OptionsURL string `yaml:"options_url" json:"options_url" jsonschema:"description=Options page opened when the API key is missing or rejected"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.setDefaults()

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	// set defaults for server
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}

	// set defaults for database
	if c.Database.DSN == "" {
		c.Database.DSN = "file:wkbadge.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 3600
	}

	// set defaults for api
	if c.API.BaseURL == "" {
		c.API.BaseURL = "https://api.wanikani.com/v2"
	}
	if c.API.Revision == "" {
		c.API.Revision = "20170710"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.API.Cooldown == 0 {
		c.API.Cooldown = 5 * time.Second
	}

	if c.Site.URL == "" {
		c.Site.URL = "https://www.wanikani.com"
	}

	// set defaults for preferences
	if c.Defaults.UpdateInterval == 0 {
		c.Defaults.UpdateInterval = 15
	}
	if c.Defaults.NotifLife == 0 {
		c.Defaults.NotifLife = 5
	}

	// set defaults for desktop commands
	if c.Desktop.WindowsCmd == "" {
		c.Desktop.WindowsCmd = "wmctrl -l"
	}
	if c.Desktop.NotifyCmd == "" {
		c.Desktop.NotifyCmd = "notify-send"
	}

	if c.Locale.Lang == "" {
		c.Locale.Lang = "en"
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	// validate server config
	if cfg.Server.Timeout < time.Second {
		return errors.New("server timeout must be at least 1 second")
	}

	// validate api config
	if u, err := url.Parse(cfg.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q is not a valid url", cfg.API.BaseURL)
	}
	if cfg.API.Timeout < time.Second {
		return errors.New("api.timeout must be at least 1 second")
	}
	if cfg.API.Cooldown < 0 {
		return errors.New("api.cooldown must be non-negative")
	}

	if u, err := url.Parse(cfg.Site.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("site.url %q is not a valid url", cfg.Site.URL)
	}

	// validate preference defaults
	if cfg.Defaults.UpdateInterval < 1 {
		return errors.New("defaults.update_interval must be at least 1 minute")
	}
	if cfg.Defaults.NotifLife < 1 {
		return errors.New("defaults.notif_life must be at least 1 second")
	}

	if cfg.Locale.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Locale.Timezone); err != nil {
			return fmt.Errorf("locale.timezone: %w", err)
		}
	}

	return nil
}

// Location returns the configured time zone, local time if not set
func (c *Config) Location() *time.Location {
	if c.Locale.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Locale.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}
