// Package config loads flightdeck settings from defaults, an optional YAML
// file and FLIGHTDECK_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendHID         = "hid"
	BackendFramebuffer = "framebuffer"
)

// Config holds the application configuration
type Config struct {
	AssetsDir       string        `mapstructure:"assets_dir"`
	Backend         string        `mapstructure:"backend"`
	Brightness      int           `mapstructure:"brightness"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	WatchAssets     bool          `mapstructure:"watch_assets"`
	Debug           bool          `mapstructure:"debug"`
	StdioLog        string        `mapstructure:"stdio_log"`

	Bridge      Bridge      `mapstructure:"bridge"`
	Framebuffer Framebuffer `mapstructure:"framebuffer"`
}

type Bridge struct {
	URL      string        `mapstructure:"url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type Framebuffer struct {
	Device   string `mapstructure:"device"`
	Keyboard string `mapstructure:"keyboard"`
	Columns  int    `mapstructure:"columns"`
	Rows     int    `mapstructure:"rows"`
}

// New returns a viper instance with defaults, search paths and environment
// bindings set. Callers may override values before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName("flightdeck")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/flightdeck/")

	v.SetDefault("assets_dir", "./Assets")
	v.SetDefault("backend", BackendHID)
	v.SetDefault("brightness", 40)
	v.SetDefault("refresh_interval", "1s")
	v.SetDefault("watch_assets", true)
	v.SetDefault("debug", false)
	v.SetDefault("stdio_log", "")
	v.SetDefault("bridge.url", "http://127.0.0.1:8080")
	v.SetDefault("bridge.timeout", "2s")
	v.SetDefault("bridge.cache_ttl", "2s")
	v.SetDefault("framebuffer.device", "/dev/fb0")
	v.SetDefault("framebuffer.keyboard", "")
	v.SetDefault("framebuffer.columns", 5)
	v.SetDefault("framebuffer.rows", 3)

	v.SetEnvPrefix("FLIGHTDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file if there is one and decodes the result.
// A missing file is not an error; a malformed one is.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) validate() error {
	switch cfg.Backend {
	case BackendHID, BackendFramebuffer:
	default:
		return fmt.Errorf("backend must be %q or %q, got %q", BackendHID, BackendFramebuffer, cfg.Backend)
	}
	if cfg.Brightness < 0 || cfg.Brightness > 100 {
		return fmt.Errorf("brightness must be between 0 and 100, got %d", cfg.Brightness)
	}
	if cfg.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive")
	}
	if cfg.AssetsDir == "" {
		return fmt.Errorf("assets_dir is required")
	}
	if cfg.Bridge.URL == "" {
		return fmt.Errorf("bridge.url is required")
	}
	if cfg.Bridge.CacheTTL < 0 {
		return fmt.Errorf("bridge.cache_ttl must not be negative")
	}
	if cfg.Backend == BackendFramebuffer && (cfg.Framebuffer.Columns < 1 || cfg.Framebuffer.Rows < 1) {
		return fmt.Errorf("framebuffer grid must be at least 1x1, got %dx%d", cfg.Framebuffer.Columns, cfg.Framebuffer.Rows)
	}
	return nil
}
