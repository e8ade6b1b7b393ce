// Package app assembles the store, logger and query services for one
// repository. An App is built once per process and handed to every operation.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/helioweb/helioweb/internal/association"
	"github.com/helioweb/helioweb/internal/config"
	"github.com/helioweb/helioweb/internal/funnel"
	"github.com/helioweb/helioweb/internal/graph"
	"github.com/helioweb/helioweb/internal/hierarchy"
	"github.com/helioweb/helioweb/internal/logger"
	"github.com/helioweb/helioweb/internal/storage/sqlite"
)

// App is the application context.
type App struct {
	Root   string
	Config *config.Config
	Logger *logger.ZapLogger
	Store  *sqlite.Store

	Graph       *graph.Queries
	Hierarchy   *hierarchy.Engine
	Funnel      *funnel.Engine
	Association *association.Service
}

// Option configures Open.
type Option func(*options)

type options struct {
	logger *logger.ZapLogger
}

// WithLogger replaces the logger built from the global config.
func WithLogger(l *logger.ZapLogger) Option {
	return func(o *options) { o.logger = l }
}

// Open loads the repository at root and wires every service over its query
// database. The caller must Close the App.
func Open(root string, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	log := o.logger
	if log == nil {
		global, err := config.LoadGlobalConfig()
		if err != nil {
			return nil, err
		}
		level := global.LogLevel
		if level == "" {
			level = "warn"
		}
		if log, err = logger.NewLogger(global.LogFormat, level); err != nil {
			return nil, fmt.Errorf("configuring logger: %w", err)
		}
	}

	store, err := sqlite.Open(config.DBPath(root), log.With(zap.String("component", "sqlite")))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	assocOpts := []association.Option{association.WithLogger(log.With(zap.String("component", "association")))}
	if cfg.Journal() {
		assocOpts = append(assocOpts, association.WithAssertionLog(config.AssertedPath(root)))
	}

	return &App{
		Root:        root,
		Config:      cfg,
		Logger:      log,
		Store:       store,
		Graph:       graph.New(store).WithSearchLimit(cfg.SearchLimit),
		Hierarchy:   hierarchy.New(store),
		Funnel:      funnel.New(store, log.With(zap.String("component", "funnel"))),
		Association: association.New(store, assocOpts...),
	}, nil
}

// Rebuild reloads the query database from the repository's JSONL files.
func (a *App) Rebuild(ctx context.Context) (sqlite.RebuildStats, error) {
	return a.Store.RebuildFromJSONL(ctx, config.DocsPath(a.Root), config.AssertedPath(a.Root))
}

// Close releases the database and flushes the logger.
func (a *App) Close() error {
	_ = a.Logger.Sync()
	return a.Store.Close()
}
