// Package print is a compiled-in bud that prints a summary of the content
// registry. A manifest naming it with optional dependencies on other buds
// shows what those buds changed.
package print

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/rootloader/api"
	"github.com/vk/rootloader/internal/handlers"
	"github.com/vk/rootloader/internal/registry"
)

// AssemblyIdentity is what a manifest names to load this bud.
const AssemblyIdentity = "RootLoader.Print.dll"

// Module implements the handlers.Module interface for this package.
type Module struct {
	// Out defaults to standard output.
	Out io.Writer
}

// Summary is the printed line of one kind.
type Summary struct {
	Kind       string
	Total      int
	Added      int
	Overridden int
}

// Summarize counts the entries of every kind.
func Summarize(v *api.Venus) []Summary {
	var out []Summary
	for _, kind := range v.Kinds() {
		s := Summary{Kind: kind}
		for _, e := range v.Entries(kind) {
			s.Total++
			if e.CreatorID != registry.BaseCreator {
				s.Added++
			}
			if e.CurrentOwnerID != e.CreatorID {
				s.Overridden++
			}
		}
		out = append(out, s)
	}
	return out
}

// OnActivatePrint writes one line per content kind.
func (m *Module) OnActivatePrint(ctx context.Context, v *api.Venus) error {
	slog.Info("Printing content summary")
	w := m.Out
	if w == nil {
		w = os.Stdout
	}

	summaries := Summarize(v)
	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, "      (no content)")
		return err
	}
	for _, s := range summaries {
		if _, err := fmt.Fprintf(w, "      %s = %d (added %d, overridden %d)\n", s.Kind, s.Total, s.Added, s.Overridden); err != nil {
			return err
		}
	}
	return nil
}

// Register registers the handler with the loader.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register(AssemblyIdentity, api.ExtensionFunc(m.OnActivatePrint))
}
