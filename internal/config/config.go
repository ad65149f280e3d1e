// Package config loads the cardgrid configuration file.
//
// Configuration is TOML, by default at ~/.config/cardgrid/config.toml:
//
//	[site]
//	url = "https://blog.example"
//	title = "Example Blog"
//
//	[content]
//	api_url = "https://blog.example/api/content"
//	api_key = "22444f78447824223cefc48062"
//	per_page = 12
//
//	[cache]
//	backend = "file"   # file | memory | redis | none
//	ttl = "15m"
//
//	[layout]
//	mode = "masonry"   # masonry | pile, empty follows the page container
//	width = 1200.0
//	seed = 42
//
//	[server]
//	addr = ":8384"
//	demo = true
//
// A missing file yields the defaults; a malformed or invalid file is an
// error.
package config

import (
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/masonworks/cardgrid/pkg/cache"
	"github.com/masonworks/cardgrid/pkg/errors"
)

// Duration wraps time.Duration so TOML values can be written as
// strings like "15m" or "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the full cardgrid configuration.
type Config struct {
	Site    SiteConfig    `toml:"site"`
	Content ContentConfig `toml:"content"`
	Cache   CacheConfig   `toml:"cache"`
	Layout  LayoutConfig  `toml:"layout"`
	Server  ServerConfig  `toml:"server"`
}

// SiteConfig identifies the blog the tool points at.
type SiteConfig struct {
	URL   string `toml:"url"`
	Title string `toml:"title"`
}

// ContentConfig configures the content API used for category batches.
type ContentConfig struct {
	APIURL  string `toml:"api_url"`
	APIKey  string `toml:"api_key"`
	PerPage int    `toml:"per_page"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend string   `toml:"backend"` // file | memory | redis | none
	Dir     string   `toml:"dir"`     // file backend directory, empty for the default
	TTL     Duration `toml:"ttl"`     // page document TTL
	Redis   string   `toml:"redis"`   // redis URL, e.g. redis://localhost:6379/0
}

// LayoutConfig carries the layout knobs the CLI and server share.
type LayoutConfig struct {
	Mode  string  `toml:"mode"` // masonry | pile, empty follows the page container
	Width float64 `toml:"width"`
	Seed  uint64  `toml:"seed"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Addr string `toml:"addr"`
	Demo bool   `toml:"demo"` // serve the built-in demo posts instead of an upstream
}

// Valid cache backends. Empty selects the default (file).
var validBackends = map[string]bool{
	"":       true,
	"file":   true,
	"memory": true,
	"redis":  true,
	"none":   true,
}

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		Content: ContentConfig{
			PerPage: 12,
		},
		Cache: CacheConfig{
			Backend: "file",
			TTL:     Duration{cache.TTLPage},
		},
		Layout: LayoutConfig{
			Width: 1200,
			Seed:  42,
		},
		Server: ServerConfig{
			Addr: ":8384",
			Demo: true,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "cardgrid", "config.toml")
}

// Load reads the configuration at path, applying defaults for missing
// keys. An empty path means DefaultPath. A missing file is not an
// error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}

	if err := Validate(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for contradictions. Defaults are
// assumed to have been applied.
func Validate(cfg *Config) error {
	if err := checkURL("site.url", cfg.Site.URL); err != nil {
		return err
	}
	if err := checkURL("content.api_url", cfg.Content.APIURL); err != nil {
		return err
	}
	if cfg.Content.PerPage < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "content.per_page must not be negative, got %d", cfg.Content.PerPage)
	}

	if !validBackends[cfg.Cache.Backend] {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be file, memory, redis, or none, got %q", cfg.Cache.Backend)
	}
	if cfg.Cache.Backend == "redis" && cfg.Cache.Redis == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis address is required for the redis backend")
	}
	if cfg.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative, got %s", cfg.Cache.TTL)
	}

	switch cfg.Layout.Mode {
	case "", "masonry", "pile":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "layout.mode must be masonry or pile, got %q", cfg.Layout.Mode)
	}
	if cfg.Layout.Width < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.width must not be negative, got %g", cfg.Layout.Width)
	}

	if cfg.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr is required")
	}
	if !cfg.Server.Demo && cfg.Site.URL == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "site.url is required when demo mode is off")
	}
	return nil
}

func checkURL(key, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s is not a valid url", key)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New(errors.ErrCodeInvalidConfig, "%s scheme must be http or https, got %q", key, u.Scheme)
	}
	return nil
}
