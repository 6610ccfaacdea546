// Package cli implements the silsilah command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/juruladenbam/bam-sub000/pkg/cache"
	"github.com/juruladenbam/bam-sub000/pkg/config"
	errs "github.com/juruladenbam/bam-sub000/pkg/errors"
	"github.com/juruladenbam/bam-sub000/pkg/family"
	"github.com/juruladenbam/bam-sub000/pkg/pipeline"
	"github.com/juruladenbam/bam-sub000/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "silsilah"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string // --config
	dataPath   string // --data, overrides store.path
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Configuration & Runner Factory
// =============================================================================

// loadConfig reads the configuration and applies global flag overrides.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	if c.dataPath != "" {
		cfg.Store.Path = c.dataPath
		if driver := driverForPath(c.dataPath); driver != "" {
			cfg.Store.Driver = driver
		}
	}
	return cfg, nil
}

// driverForPath guesses the store driver from a data file extension.
// Unknown extensions keep the configured driver.
func driverForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return store.DriverJSON
	case ".db", ".sqlite", ".sqlite3":
		return store.DriverSQLite
	}
	return ""
}

// newRunner opens the configured store and cache and returns a runner over
// them. The caller must Close it.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config) (*pipeline.Runner, error) {
	st, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, err
	}

	dir, err := cacheDir()
	if err != nil && cfg.Cache.Backend == cache.BackendFile && cfg.Cache.Dir == "" {
		c.Logger.Warn("no cache directory, caching disabled", "error", err)
		cfg.Cache.Backend = cache.BackendNone
	}
	ch, err := cache.Open(ctx, cfg.CacheOptions(dir))
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("open cache: %w", err)
	}

	r := pipeline.NewRunner(st, ch, cache.NewScopedKeyer(nil, cfg.Cache.Prefix), c.Logger)
	r.TTL = cfg.CacheTTL()
	r.Geometry = cfg.LayoutOptions()
	return r, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/silsilah/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Argument Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	formats := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			formats = append(formats, p)
		}
	}
	return formats
}

// parseID parses a positional id argument.
func parseID(s string) (family.ID, error) {
	id, err := errs.ParseID(s)
	if err != nil {
		return family.NoID, err
	}
	return family.ID(id), nil
}
