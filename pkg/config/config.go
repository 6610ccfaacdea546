// Package config loads settings for the silsilah CLI and server.
//
// Settings come from three layers, later ones winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file, silsilah.toml by default
//  3. environment variables prefixed SILSILAH_, optionally from a .env file
//
// Command-line flags are applied by the CLI on top of the loaded config.
//
// Example silsilah.toml:
//
//	[store]
//	driver = "sqlite"
//	path = "silsilah.db"
//
//	[cache]
//	backend = "redis"
//	url = "redis://localhost:6379/0"
//
//	[layout]
//	node_width = 200
//	include_divorced = true
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/juruladenbam/bam-sub000/pkg/cache"
	errs "github.com/juruladenbam/bam-sub000/pkg/errors"
	"github.com/juruladenbam/bam-sub000/pkg/store"
	"github.com/juruladenbam/bam-sub000/pkg/treelayout"
)

// DefaultFile is read by Load when no path is given and it exists.
const DefaultFile = "silsilah.toml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SILSILAH_"

// Config is the complete application configuration.
type Config struct {
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Layout LayoutConfig `toml:"layout"`
	Log    LogConfig    `toml:"log"`
}

// StoreConfig selects the record store.
type StoreConfig struct {
	Driver   string `toml:"driver"`
	Path     string `toml:"path"`
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// CacheConfig selects the result cache.
type CacheConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	Size    int    `toml:"size"`
	URL     string `toml:"url"`
	Prefix  string `toml:"prefix"`
	TTL     string `toml:"ttl"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	CORSOrigins    []string `toml:"cors_origins"`
	RequestTimeout string   `toml:"request_timeout"`
}

// LayoutConfig mirrors treelayout.Options.
type LayoutConfig struct {
	NodeWidth        float64 `toml:"node_width"`
	NodeHeight       float64 `toml:"node_height"`
	VerticalGap      float64 `toml:"vertical_gap"`
	SiblingBuffer    float64 `toml:"sibling_buffer"`
	SpouseGap        float64 `toml:"spouse_gap"`
	SpouseBuffer     float64 `toml:"spouse_buffer"`
	OverlapAllowance float64 `toml:"overlap_allowance"`
	IncludeDivorced  bool    `toml:"include_divorced"`
}

// LogConfig configures logging. File enables a rotating log file for serve.
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Default returns the built-in configuration.
func Default() Config {
	geo := treelayout.DefaultOptions()
	return Config{
		Store: StoreConfig{
			Driver: store.DriverJSON,
			Path:   "family.json",
		},
		Cache: CacheConfig{
			Backend: cache.BackendFile,
			Size:    cache.DefaultLRUSize,
			TTL:     "24h",
		},
		Server: ServerConfig{
			Addr:           ":8080",
			CORSOrigins:    []string{"*"},
			RequestTimeout: "30s",
		},
		Layout: LayoutConfig{
			NodeWidth:        geo.NodeWidth,
			NodeHeight:       geo.NodeHeight,
			VerticalGap:      geo.VerticalGap,
			SiblingBuffer:    geo.SiblingBuffer,
			SpouseGap:        geo.SpouseGap,
			SpouseBuffer:     geo.SpouseBuffer,
			OverlapAllowance: geo.OverlapAllowance,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load builds the configuration from defaults, the TOML file at path and the
// environment. An empty path reads DefaultFile if present; an explicit path
// must exist.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if os.IsNotExist(err) {
				return cfg, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s not found", path)
			}
			return cfg, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse config %s", path)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Parse decodes TOML text over the defaults without consulting the
// environment.
func Parse(data string) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, &cfg); err != nil {
		return cfg, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse config")
	}
	return cfg, cfg.Validate()
}

// applyEnv overrides fields from SILSILAH_* variables. PORT is honoured for
// platforms that inject it.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	str("STORE_DRIVER", &c.Store.Driver)
	str("DATA", &c.Store.Path)
	str("MONGO_URI", &c.Store.URI)
	str("MONGO_DATABASE", &c.Store.Database)
	str("CACHE_BACKEND", &c.Cache.Backend)
	str("CACHE_DIR", &c.Cache.Dir)
	str("CACHE_PREFIX", &c.Cache.Prefix)
	str("CACHE_TTL", &c.Cache.TTL)
	str("REDIS_URL", &c.Cache.URL)
	str("ADDR", &c.Server.Addr)
	str("REQUEST_TIMEOUT", &c.Server.RequestTimeout)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FILE", &c.Log.File)

	if v, ok := lookup("PORT"); ok && v != "" {
		c.Server.Addr = ":" + v
	}
	if v, ok := lookup(EnvPrefix + "CORS_ORIGINS"); ok && v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v, ok := lookup(EnvPrefix + "CACHE_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return errs.New(errs.ErrCodeInvalidInput, "%sCACHE_SIZE must be a positive integer, got %q", EnvPrefix, v)
		}
		c.Cache.Size = n
	}
	if v, ok := lookup(EnvPrefix + "INCLUDE_DIVORCED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errs.New(errs.ErrCodeInvalidInput, "%sINCLUDE_DIVORCED must be a boolean, got %q", EnvPrefix, v)
		}
		c.Layout.IncludeDivorced = b
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks enumerated values and durations.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case "", store.DriverJSON, store.DriverSQLite, store.DriverMongo:
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unknown store driver %q (must be json, sqlite or mongo)", c.Store.Driver)
	}
	switch c.Cache.Backend {
	case "", cache.BackendNone, cache.BackendFile, cache.BackendLRU, cache.BackendRedis:
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unknown cache backend %q (must be none, file, lru or redis)", c.Cache.Backend)
	}
	if _, err := parseDuration(c.Cache.TTL); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "cache ttl")
	}
	if _, err := parseDuration(c.Server.RequestTimeout); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "server request_timeout")
	}
	if c.Layout.OverlapAllowance < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "layout overlap_allowance cannot be negative")
	}
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}

// =============================================================================
// Component Configs
// =============================================================================

// StoreOptions returns the settings for store.Open.
func (c Config) StoreOptions() store.Config {
	return store.Config{
		Driver:   c.Store.Driver,
		Path:     c.Store.Path,
		URI:      c.Store.URI,
		Database: c.Store.Database,
	}
}

// CacheOptions returns the settings for cache.Open. defaultDir is used by
// the file backend when no directory is configured.
func (c Config) CacheOptions(defaultDir string) cache.Config {
	dir := c.Cache.Dir
	if dir == "" {
		dir = defaultDir
	}
	return cache.Config{
		Backend: c.Cache.Backend,
		Dir:     dir,
		Size:    c.Cache.Size,
		URL:     c.Cache.URL,
	}
}

// CacheTTL is the lifetime of cached entries; zero means no expiry.
func (c Config) CacheTTL() time.Duration {
	d, _ := parseDuration(c.Cache.TTL)
	return d
}

// RequestTimeout bounds each API request.
func (c Config) RequestTimeout() time.Duration {
	d, _ := parseDuration(c.Server.RequestTimeout)
	return d
}

// LayoutOptions converts the layout section to engine options.
func (c Config) LayoutOptions() treelayout.Options {
	opts := treelayout.DefaultOptions()
	opts.NodeWidth = c.Layout.NodeWidth
	opts.NodeHeight = c.Layout.NodeHeight
	opts.VerticalGap = c.Layout.VerticalGap
	opts.SiblingBuffer = c.Layout.SiblingBuffer
	opts.SpouseGap = c.Layout.SpouseGap
	opts.SpouseBuffer = c.Layout.SpouseBuffer
	opts.OverlapAllowance = c.Layout.OverlapAllowance
	opts.IncludeDivorced = c.Layout.IncludeDivorced
	return opts
}
