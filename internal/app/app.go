// Package app wires the orchestrator together: it loads and validates the
// catalog, owns the logger and adapter registry, and drives a run from
// input scanning through planning, execution, and reporting.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/seqqap/seqqap/internal/adapter"
	"github.com/seqqap/seqqap/internal/catalog"
	"github.com/seqqap/seqqap/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle for a single run.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	catalog  *catalog.Catalog
	adapters *adapter.Registry
}

// NewApp constructs a fully initialized App with its own isolated logger,
// adapter registry, and loaded catalog. A failure to load or validate the
// catalog is a fatal startup error and panics; the entrypoint recovers it
// into a clean exit message.
func NewApp(outW io.Writer, cfg *Config, extra map[string]adapter.Adapter) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	adapters := adapter.NewRegistry()
	registerCoreAdapters(adapters)
	for name, a := range extra {
		adapters.Register(name, a)
	}
	logger.Debug("Adapters registered.", "count", len(adapters.Names()))

	cat, err := catalog.Load(ctx, adapters.Names(), cfg.CatalogPath)
	if err != nil {
		panic(fmt.Errorf("failed to load catalog: %w", err))
	}
	logger.Debug("Catalog loaded and validated.")

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		catalog:  cat,
		adapters: adapters,
	}
}

// Catalog returns the loaded catalog. Primarily for testing.
func (a *App) Catalog() *catalog.Catalog {
	return a.catalog
}
