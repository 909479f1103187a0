// Package handlers holds the buds compiled into the binary, keyed by the
// assembly identity their manifests declare.
package handlers

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/vk/rootloader/api"
)

// Module is a compiled-in bud that knows how to register itself.
type Module interface {
	Register(h *Handlers)
}

// Handlers holds all the registered extensions.
type Handlers struct {
	all map[string]api.Extension
}

// New creates an empty Handlers and registers the given modules.
func New(modules ...Module) *Handlers {
	h := &Handlers{all: make(map[string]api.Extension)}
	for _, m := range modules {
		m.Register(h)
	}
	return h
}

// Register binds an extension to an assembly identity.
func (h *Handlers) Register(assemblyIdentity string, ext api.Extension) {
	if _, exists := h.all[assemblyIdentity]; exists {
		panic(fmt.Sprintf("extension with name '%s' already registered", assemblyIdentity))
	}
	slog.Debug("Registering extension.", "name", assemblyIdentity)
	h.all[assemblyIdentity] = ext
}

// Lookup returns the extension registered for an assembly identity.
func (h *Handlers) Lookup(assemblyIdentity string) (api.Extension, bool) {
	ext, ok := h.all[assemblyIdentity]
	return ext, ok
}

// Names returns the registered assembly identities in sorted order.
func (h *Handlers) Names() []string {
	names := make([]string, 0, len(h.all))
	for name := range h.all {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
