// Package config loads the gateway's configuration from environment
// variables, with an optional YAML file beneath them and explicit
// defaults as the floor, following the layered-provider pattern the
// example repos build on top of koanf.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	yamlparser "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"pixgate/logging"
)

// Config holds all gateway configuration, sourced from the env var
// table: HOST/PORT/WORKERS/VIPS_CONCURRENCY/CORS/CACHE/CACHE_ENABLE/
// CACHE_CAPACITY/SVG_DPI/SVG_UNLIMITED/AVIF_ENABLE/KEY/MPV/LOG.
type Config struct {
	Host            string `koanf:"host" yaml:"host"`
	Port            int    `koanf:"port" yaml:"port"`
	Workers         int    `koanf:"workers" yaml:"workers"`
	VipsConcurrency int    `koanf:"vips_concurrency" yaml:"vips_concurrency"`
	CORS            string `koanf:"cors" yaml:"cors"`
	Cache           string `koanf:"cache" yaml:"cache"`
	CacheEnable     bool   `koanf:"cache_enable" yaml:"cache_enable"`
	CacheCapacityGB int    `koanf:"cache_capacity" yaml:"cache_capacity"`
	SVGDPI          int    `koanf:"svg_dpi" yaml:"svg_dpi"`
	SVGUnlimited    bool   `koanf:"svg_unlimited" yaml:"svg_unlimited"`
	AvifEnable      bool   `koanf:"avif_enable" yaml:"avif_enable"`
	Key             string `koanf:"key" yaml:"key,omitempty"`
	Mpv             string `koanf:"mpv" yaml:"mpv"`
	Log             string `koanf:"log" yaml:"log"`
}

// Default returns the configuration's default values, applied before
// any file or environment override.
func Default() *Config {
	return &Config{
		Host:            "0.0.0.0",
		Port:            0,
		Workers:         0,
		VipsConcurrency: 0,
		CORS:            "",
		Cache:           "/tmp",
		CacheEnable:     true,
		CacheCapacityGB: 10,
		SVGDPI:          72,
		SVGUnlimited:    true,
		AvifEnable:      false,
		Key:             "",
		Mpv:             "mpv",
		Log:             "off",
	}
}

// Load builds a Config by layering, lowest to highest priority:
// built-in defaults, an optional YAML file (yamlPath, skipped when
// empty), then process environment variables named per the table
// above.
func Load(yamlPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(*Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if strings.TrimSpace(yamlPath) != "" {
		if err := k.Load(file.Provider(yamlPath), yamlparser.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", yamlPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the loaded configuration for values the gateway
// cannot safely start with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.Host == "" {
		return fmt.Errorf("HOST must be set")
	}
	if c.Workers < 0 {
		return fmt.Errorf("WORKERS must be >= 0, got %d", c.Workers)
	}
	if c.VipsConcurrency < 0 {
		return fmt.Errorf("VIPS_CONCURRENCY must be >= 0, got %d", c.VipsConcurrency)
	}
	if c.CacheCapacityGB <= 0 {
		return fmt.Errorf("CACHE_CAPACITY must be > 0, got %d", c.CacheCapacityGB)
	}
	if c.SVGDPI <= 0 {
		return fmt.Errorf("SVG_DPI must be > 0, got %d", c.SVGDPI)
	}
	return nil
}

// CORSOrigins splits the comma-separated CORS env var into a slice.
// An empty value means "allow any", signalled by a nil slice.
func (c *Config) CORSOrigins() []string {
	trimmed := strings.TrimSpace(c.CORS)
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// LogLevel maps the Log field through logging.ParseLevel.
func (c *Config) LogLevel() slog.Level {
	return logging.ParseLevel(c.Log)
}

// DumpYAML marshals the configuration to path, for the --dump startup
// flag that mirrors the teacher's settings.conf dump.
func (c *Config) DumpYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// String renders the configuration for startup logging, redacting Key.
func (c *Config) String() string {
	key := "unset"
	if c.Key != "" {
		key = "set (" + strconv.Itoa(len(c.Key)) + " bytes)"
	}
	return fmt.Sprintf(
		"host=%s port=%d workers=%d vips_concurrency=%d cors=%q cache=%s cache_enable=%v "+
			"cache_capacity_gb=%d svg_dpi=%d svg_unlimited=%v avif_enable=%v key=%s mpv=%s log=%s",
		c.Host, c.Port, c.Workers, c.VipsConcurrency, c.CORS, c.Cache, c.CacheEnable,
		c.CacheCapacityGB, c.SVGDPI, c.SVGUnlimited, c.AvifEnable, key, c.Mpv, c.Log,
	)
}
