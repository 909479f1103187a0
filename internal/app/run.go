package app

import (
	"context"
	"fmt"

	"github.com/vk/rootloader/internal/activation"
	"github.com/vk/rootloader/internal/assets"
	"github.com/vk/rootloader/internal/hcl"
	"github.com/vk/rootloader/internal/inmemorystore"
	"github.com/vk/rootloader/internal/manifest"
	"github.com/vk/rootloader/internal/resolver"
	"github.com/vk/rootloader/internal/session"
	"github.com/vk/rootloader/internal/telemetry"
)

// Version is reported by the version command and on every trace.
var Version = "dev"

// Discover reads the manifests of every bud under the buds path.
func (a *App) Discover(ctx context.Context) ([]manifest.Candidate, error) {
	ctx = a.context(ctx)
	return manifest.Discover(ctx, a.config.BudsPath)
}

// Resolve discovers the buds and computes their load order without
// activating anything.
func (a *App) Resolve(ctx context.Context) (*resolver.Result, error) {
	ctx = a.context(ctx)
	candidates, err := a.Discover(ctx)
	if err != nil {
		return nil, err
	}
	return resolver.Resolve(ctx, candidates), nil
}

// Run executes one activation pass: discover, resolve, activate and write
// the touched tables to the output path, or to memory for a dry run.
func (a *App) Run(ctx context.Context) (*activation.Report, error) {
	ctx = a.context(ctx)
	a.logger.Debug("App.Run method started.")

	shutdown, err := telemetry.Setup(ctx, a.config.OtelEndpoint, Version)
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn("Tracing shutdown failed.", "error", err)
		}
	}()

	candidates, err := a.Discover(ctx)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		a.logger.Warn("No buds found, nothing will be activated.", "path", a.config.BudsPath)
	}

	var sink session.Sink = assets.Dir{Root: a.config.OutputPath}
	if a.config.DryRun {
		a.logger.Info("Dry run, tables are not written.")
		sink = inmemorystore.New()
	}

	report, err := activation.Run(ctx, candidates, activation.Options{
		Loader: activation.Chain(
			activation.HandlerLoader{Handlers: a.handlers},
			hcl.NewLoader(a.languages),
		),
		Source: assets.Open(a.config.DataPath),
		Sink:   sink,
		Strict: a.config.Strict,
	})
	if err != nil {
		return report, fmt.Errorf("activation failed: %w", err)
	}

	a.logger.Debug("App.Run method finished.")
	return report, nil
}
