// Package activation runs one activation pass: it resolves the discovered
// manifests, opens a session over the host's baseline tables, activates every
// cleared bud in load order and writes the touched tables once at the end.
package activation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vk/rootloader/api"
	"github.com/vk/rootloader/internal/ctxlog"
	"github.com/vk/rootloader/internal/manifest"
	"github.com/vk/rootloader/internal/registry"
	"github.com/vk/rootloader/internal/resolver"
	"github.com/vk/rootloader/internal/session"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrRejected is returned in strict mode when any manifest was rejected.
	ErrRejected = errors.New("buds were rejected")
	// ErrPanic wraps a panic recovered from an extension.
	ErrPanic = errors.New("extension panicked")
	// ErrDependencyFailed is recorded for a bud skipped because one of its
	// hard dependencies did not activate.
	ErrDependencyFailed = errors.New("hard dependency failed to activate")
)

const tracerName = "github.com/vk/rootloader/internal/activation"

// Options configure a pass.
type Options struct {
	Loader Loader
	Source session.Source
	Sink   session.Sink
	// Strict aborts the pass before activation when any manifest was
	// rejected.
	Strict bool
}

// Failure is a bud that was cleared by the resolver but did not activate.
type Failure struct {
	ID    string `json:"id" yaml:"id"`
	Error string `json:"error" yaml:"error"`
}

// Report is the outcome of a pass.
type Report struct {
	SessionID  string                     `json:"sessionId" yaml:"sessionId"`
	Order      []string                   `json:"order" yaml:"order"`
	Activated  []string                   `json:"activated" yaml:"activated"`
	Failed     []Failure                  `json:"failed,omitempty" yaml:"failed,omitempty"`
	Rejected   []*resolver.Rejection      `json:"rejected,omitempty" yaml:"rejected,omitempty"`
	Outputs    []session.Output           `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Provenance []registry.ProvenanceEvent `json:"provenance,omitempty" yaml:"provenance,omitempty"`
}

// Run performs one activation pass over the discovered candidates.
//
// Rejections are all reported before any bud runs. A bud whose extension
// fails, or panics, is recorded in Report.Failed and the pass moves on; what
// it changed before failing stays changed. Buds that hard-depend on a failed
// bud are skipped and recorded as failed too. The returned report is non-nil
// even when Run fails.
func Run(ctx context.Context, candidates []manifest.Candidate, opts Options) (*Report, error) {
	if opts.Loader == nil || opts.Source == nil || opts.Sink == nil {
		return nil, errors.New("activation needs a loader, a source and a sink")
	}

	report := &Report{SessionID: uuid.NewString()}
	ctx = ctxlog.With(ctx, "session", report.SessionID)
	logger := ctxlog.FromContext(ctx)

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "activation.Run", trace.WithAttributes(
		attribute.String("rootloader.session_id", report.SessionID),
		attribute.Int("rootloader.candidates", len(candidates)),
	))
	defer span.End()

	logger.Info("Activation pass started.", "candidates", len(candidates))

	res := resolver.Resolve(ctx, candidates)
	report.Order = res.IDs()
	report.Rejected = res.Rejections
	span.SetAttributes(attribute.Int("rootloader.rejected", len(res.Rejections)))
	if opts.Strict && len(res.Rejections) > 0 {
		err := fmt.Errorf("%w: %d of %d", ErrRejected, len(res.Rejections), len(candidates))
		span.SetStatus(codes.Error, err.Error())
		return report, err
	}

	events := &registry.Collector{}
	sink := registry.Tee(registry.LogSink{Logger: logger}, events)
	sess, err := session.Open(ctx, opts.Source, registry.WithSink(sink))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return report, fmt.Errorf("failed to open session: %w", err)
	}

	failed := make(map[string]struct{})
	for _, a := range res.Order {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return report, err
		}
		if dep, ok := failedDependency(a, failed); ok {
			err := fmt.Errorf("%w: %s", ErrDependencyFailed, dep)
			logger.Error("Bud skipped.", "bud", a.ID(), "dependency", dep)
			report.Failed = append(report.Failed, Failure{ID: a.ID(), Error: err.Error()})
			failed[a.ID()] = struct{}{}
			continue
		}
		for _, d := range a.Manifest.Dependencies {
			if _, ok := failed[d.ID]; ok && d.Optional {
				logger.Warn("Optional dependency failed to activate.", "bud", a.ID(), "dependency", d.ID)
			}
		}
		if err := activateOne(ctx, tracer, sess.Registry(), opts.Loader, a); err != nil {
			logger.Error("Bud failed to activate.", "bud", a.ID(), "error", err)
			report.Failed = append(report.Failed, Failure{ID: a.ID(), Error: err.Error()})
			failed[a.ID()] = struct{}{}
			continue
		}
		report.Activated = append(report.Activated, a.ID())
	}

	report.Outputs, err = sess.Flush(ctx, opts.Sink)
	report.Provenance = events.Events()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return report, fmt.Errorf("failed to write tables: %w", err)
	}

	logger.Info("Activation pass finished.",
		"activated", len(report.Activated),
		"failed", len(report.Failed),
		"rejected", len(report.Rejected),
		"outputs", len(report.Outputs),
	)
	return report, nil
}

// failedDependency returns the first hard dependency of a that is in failed.
func failedDependency(a resolver.Activation, failed map[string]struct{}) (string, bool) {
	for _, dep := range a.Manifest.HardDependencies() {
		if _, ok := failed[dep]; ok {
			return dep, true
		}
	}
	return "", false
}

func activateOne(ctx context.Context, tracer trace.Tracer, reg *registry.Registry, loader Loader, a resolver.Activation) (err error) {
	venusLogger := ctxlog.FromContext(ctx)
	ctx = ctxlog.With(ctx, "bud", a.ID())
	ctx, span := tracer.Start(ctx, "activation.Activate", trace.WithAttributes(
		attribute.String("rootloader.bud.id", a.ID()),
		attribute.String("rootloader.bud.version", a.Manifest.Version),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	ext, err := loader.Load(ctx, a)
	if err != nil {
		return err
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Activating bud.")
	if err := activate(ctx, ext, api.New(a.ID(), reg, venusLogger)); err != nil {
		return err
	}
	logger.Info("Bud activated.")
	return nil
}

func activate(ctx context.Context, ext api.Extension, v *api.Venus) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return ext.Activate(ctx, v)
}
