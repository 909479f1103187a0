package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/vk/rootloader/internal/ctxlog"
	"github.com/vk/rootloader/internal/handlers"
	"github.com/vk/rootloader/internal/locale"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	handlers  *handlers.Handlers
	languages *locale.Table
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and the
// compiled-in buds. With no modules given, coreModules are registered.
//
// The config must come from NewConfig; NewApp panics on an invalid one.
func NewApp(outW io.Writer, cfg *Config, modules ...handlers.Module) *App {
	logger := newLogger(cfg, outW)
	logger.Debug("Logger configured successfully.")

	langs, err := cfg.languageTable()
	if err != nil {
		panic(err)
	}

	if len(modules) == 0 {
		modules = coreModules
	}
	h := handlers.New(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "extensions", h.Names())

	return &App{
		outW:      outW,
		logger:    logger,
		config:    cfg,
		handlers:  h,
		languages: langs,
	}
}

// Handlers returns the compiled-in buds. This is primarily for testing.
func (a *App) Handlers() *handlers.Handlers {
	return a.handlers
}

// Languages returns the configured language table.
func (a *App) Languages() *locale.Table {
	return a.languages
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
