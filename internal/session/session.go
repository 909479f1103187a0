// Package session holds the state of one activation session: every table
// engine opened from the host's baseline data and the content registry
// built over them.
//
// A session is opened once before any bud runs and flushed once after the
// last one; each touched table is serialized exactly once by Flush.
package session

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/vk/rootloader/internal/ctxlog"
	"github.com/vk/rootloader/internal/leaves"
	"github.com/vk/rootloader/internal/registry"
	"github.com/vk/rootloader/internal/table"
)

// ErrIncompleteKind is returned when some, but not all, tables of a kind
// exist in the baseline data.
var ErrIncompleteKind = errors.New("content kind is missing tables")

// Source supplies baseline blobs.
type Source interface {
	Table(name string) (blob string, ok bool, err error)
	LocalizedTable(lang int, name string) (blob string, ok bool, err error)
	Languages() ([]int, error)
	Names(kind string) ([]string, error)
}

// Sink receives serialized replacement tables.
type Sink interface {
	WriteTable(name, blob string) error
	WriteLocalized(lang int, name, blob string) error
}

// Output describes one table written by Flush.
type Output struct {
	Table string `json:"table" yaml:"table"`
	// Language is -1 for non-localized tables.
	Language int `json:"language" yaml:"language"`
	Bytes    int `json:"bytes" yaml:"bytes"`
}

// Session is one activation session.
type Session struct {
	reg     *registry.Registry
	kinds   []leaves.Kind
	tables  map[string]registry.Tables
	flushed bool
}

// Open reads every kind of the catalog from src and registers it. Kinds
// with no tables at all in src are skipped.
func Open(ctx context.Context, src Source, opts ...registry.Option) (*Session, error) {
	logger := ctxlog.FromContext(ctx)
	langs, err := src.Languages()
	if err != nil {
		return nil, err
	}

	s := &Session{reg: registry.New(opts...), tables: make(map[string]registry.Tables)}
	for _, kind := range leaves.Catalog() {
		tables, found, err := openKind(src, kind, langs)
		if err != nil {
			return nil, err
		}
		if !found {
			logger.Debug("Skipping content kind without baseline data.", "kind", kind.Name)
			continue
		}
		s.reg.RegisterKind(kind, tables)
		s.kinds = append(s.kinds, kind)
		s.tables[kind.Name] = tables

		names, err := src.Names(kind.Name)
		if err != nil {
			return nil, err
		}
		if err := s.reg.Seed(kind.Name, names); err != nil {
			return nil, fmt.Errorf("seeding %s names: %w", kind.Name, err)
		}
		logger.Debug("Opened content kind.", "kind", kind.Name, "named", len(names), "entries", len(s.reg.Entries(kind.Name)))
	}

	if err := s.reg.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func openKind(src Source, kind leaves.Kind, langs []int) (registry.Tables, bool, error) {
	tables := registry.Tables{
		Main:      make(map[string]*table.Table),
		Localized: make(map[string]*table.Localized),
	}
	var present, missing []string

	for _, def := range kind.Tables {
		blob, ok, err := src.Table(def.Name)
		if err != nil {
			return tables, false, err
		}
		if !ok {
			missing = append(missing, def.Name)
			continue
		}
		present = append(present, def.Name)
		tables.Main[def.Name] = table.Open(def.Name, def.Shape, blob, true)
	}

	for _, def := range kind.Localized {
		blobs := make(map[int]string)
		for _, lang := range langs {
			blob, ok, err := src.LocalizedTable(lang, def.Name)
			if err != nil {
				return tables, false, err
			}
			if ok {
				blobs[lang] = blob
			}
		}
		if len(blobs) == 0 {
			missing = append(missing, def.Name)
			continue
		}
		present = append(present, def.Name)
		tables.Localized[def.Name] = table.OpenLocalized(def.Name, def.Shape, blobs, true)
	}

	if kind.Order != "" {
		blob, ok, err := src.Table(kind.Order)
		if err != nil {
			return tables, false, err
		}
		if ok {
			order, err := table.OpenOrder(kind.Order, blob)
			if err != nil {
				return tables, false, err
			}
			tables.Order = order
		} else {
			tables.Order = table.NewOrder(kind.Order)
			if err := tables.Order.SeedBaseOrder(nil); err != nil {
				return tables, false, err
			}
		}
	}

	switch {
	case len(present) == 0:
		return tables, false, nil
	case len(missing) > 0:
		return tables, false, fmt.Errorf("%w: %s has %v but not %v", ErrIncompleteKind, kind.Name, present, missing)
	}
	return tables, true, nil
}

// Registry returns the session's content registry.
func (s *Session) Registry() *registry.Registry { return s.reg }

// Flush serializes every touched table into sink, each exactly once.
// Untouched tables are left to the host's baseline copy. A session can be
// flushed only once.
func (s *Session) Flush(ctx context.Context, sink Sink) ([]Output, error) {
	if s.flushed {
		return nil, errors.New("session already flushed")
	}
	s.flushed = true
	logger := ctxlog.FromContext(ctx)

	var outputs []Output
	for _, kind := range s.kinds {
		tables := s.tables[kind.Name]
		for _, name := range slices.Sorted(maps.Keys(tables.Main)) {
			t := tables.Main[name]
			if !t.Touched() {
				continue
			}
			blob, err := t.SerializeAll()
			if err != nil {
				return outputs, err
			}
			if err := sink.WriteTable(name, blob); err != nil {
				return outputs, err
			}
			outputs = append(outputs, Output{Table: name, Language: -1, Bytes: len(blob)})
		}
		for _, name := range slices.Sorted(maps.Keys(tables.Localized)) {
			t := tables.Localized[name]
			if !t.Touched() {
				continue
			}
			blobs, err := t.SerializeAll()
			if err != nil {
				return outputs, err
			}
			for _, lang := range t.Languages() {
				if err := sink.WriteLocalized(lang, name, blobs[lang]); err != nil {
					return outputs, err
				}
				outputs = append(outputs, Output{Table: name, Language: lang, Bytes: len(blobs[lang])})
			}
		}
		if o := tables.Order; o != nil && o.Touched() {
			blob, err := o.SerializeOrder()
			if err != nil {
				return outputs, err
			}
			if err := sink.WriteTable(o.Name(), blob); err != nil {
				return outputs, err
			}
			outputs = append(outputs, Output{Table: o.Name(), Language: -1, Bytes: len(blob)})
		}
	}

	logger.Info("Tables written.", "count", len(outputs))
	return outputs, nil
}
