// Package commands implements the peter subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/peterhq/peter/internal/cache"
	"github.com/peterhq/peter/internal/cli/config"
	"github.com/peterhq/peter/internal/cli/output"
	"github.com/peterhq/peter/internal/store"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds the shared command dependencies from the
// loaded config and the command's writers.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the loaded configuration, falling back to defaults
// when no load ran (direct command invocation in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		ProjectRoot:  ".",
		StorePath:    config.DefaultStoreFile,
		CacheDir:     config.DefaultCacheDir,
		CacheTTL:     config.DefaultCacheTTL,
		Addr:         config.DefaultAddr,
		OutputFormat: os.Getenv("PETER_OUTPUT"),
	}
}

// OpenStore opens the revision store, creating its directory first.
// Callers own the returned store and must close it.
func (c *CommandContext) OpenStore() (*store.SQLiteStore, error) {
	dir := filepath.Dir(c.Cfg.StorePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	return store.Open(c.Cfg.StorePath)
}

// OpenCache opens the configured result cache and its TTL. An empty
// cache dir yields a null cache.
func (c *CommandContext) OpenCache() (cache.Cache, time.Duration, error) {
	if c.Cfg.CacheDir == "" {
		return cache.NewNullCache(), 0, nil
	}
	ttl, err := time.ParseDuration(c.Cfg.CacheTTL)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid cache_ttl %q: %w", c.Cfg.CacheTTL, err)
	}
	fc, err := cache.NewFileCache(c.Cfg.CacheDir)
	if err != nil {
		return nil, 0, err
	}
	return fc, ttl, nil
}
