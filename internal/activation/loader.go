package activation

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/rootloader/api"
	"github.com/vk/rootloader/internal/handlers"
	"github.com/vk/rootloader/internal/resolver"
)

// ErrNoEntry is returned by a Loader that has nothing to activate for a bud.
var ErrNoEntry = errors.New("bud has no entry point")

// Loader turns a resolved manifest into something callable.
type Loader interface {
	Load(ctx context.Context, a resolver.Activation) (api.Extension, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, a resolver.Activation) (api.Extension, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, a resolver.Activation) (api.Extension, error) {
	return f(ctx, a)
}

// Chain tries each loader in turn and activates everything that was found, in
// loader order. It returns ErrNoEntry when no loader found anything.
func Chain(loaders ...Loader) Loader {
	return LoaderFunc(func(ctx context.Context, a resolver.Activation) (api.Extension, error) {
		var found []api.Extension
		for _, l := range loaders {
			ext, err := l.Load(ctx, a)
			if errors.Is(err, ErrNoEntry) {
				continue
			}
			if err != nil {
				return nil, err
			}
			found = append(found, ext)
		}
		switch len(found) {
		case 0:
			return nil, fmt.Errorf("%s: %w", a.ID(), ErrNoEntry)
		case 1:
			return found[0], nil
		}
		return api.ExtensionFunc(func(ctx context.Context, v *api.Venus) error {
			for _, ext := range found {
				if err := ext.Activate(ctx, v); err != nil {
					return err
				}
			}
			return nil
		}), nil
	})
}

// HandlerLoader finds compiled-in extensions by the manifest's assembly
// identity.
type HandlerLoader struct {
	Handlers *handlers.Handlers
}

// Load implements Loader.
func (l HandlerLoader) Load(_ context.Context, a resolver.Activation) (api.Extension, error) {
	if l.Handlers == nil || a.Manifest.AssemblyIdentity == "" {
		return nil, ErrNoEntry
	}
	ext, ok := l.Handlers.Lookup(a.Manifest.AssemblyIdentity)
	if !ok {
		return nil, ErrNoEntry
	}
	return ext, nil
}
