// Package inmemorystore provides an ephemeral, thread-safe, in-memory sink
// for serialized tables.
//
// # Purpose
//
// A session flushes its patched tables into a sink. The on-disk sink writes
// them under an output root; this store keeps them in memory instead, for
// dry runs and for tests that want to inspect what would have been written.
//
// # Characteristics
//
//   - **Ephemeral:** Created fresh for each session, never persisted
//   - **Thread-Safe:** Uses sync.Map, so a report can read while a flush writes
//   - **Keyed by path:** Blobs are stored under the path the host would read them from
package inmemorystore

import (
	"maps"
	"slices"
	"sync"

	"github.com/vk/rootloader/internal/assets"
)

// Store is an in-memory table sink.
type Store struct {
	blobs sync.Map // Key: slash separated table path, Value: string
}

// New creates a new, empty store.
func New() *Store {
	return &Store{}
}

// WriteTable records a non-localized table.
func (s *Store) WriteTable(name, blob string) error {
	s.blobs.Store(assets.TablePath(name), blob)
	return nil
}

// WriteLocalized records one language of a localized table.
func (s *Store) WriteLocalized(lang int, name, blob string) error {
	s.blobs.Store(assets.LocalizedPath(lang, name), blob)
	return nil
}

// Table returns a recorded non-localized table.
func (s *Store) Table(name string) (string, bool) {
	return s.load(assets.TablePath(name))
}

// Localized returns one recorded language of a localized table.
func (s *Store) Localized(lang int, name string) (string, bool) {
	return s.load(assets.LocalizedPath(lang, name))
}

func (s *Store) load(path string) (string, bool) {
	blob, ok := s.blobs.Load(path)
	if !ok {
		return "", false
	}
	return blob.(string), true
}

// Paths returns the paths of every recorded table in sorted order.
func (s *Store) Paths() []string {
	all := make(map[string]struct{})
	s.blobs.Range(func(k, _ any) bool {
		all[k.(string)] = struct{}{}
		return true
	})
	return slices.Sorted(maps.Keys(all))
}
