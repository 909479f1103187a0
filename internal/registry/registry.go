package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/vk/rootloader/internal/idalloc"
	"github.com/vk/rootloader/internal/leaves"
	"github.com/vk/rootloader/internal/table"
)

// BaseCreator owns every entry that comes from the baseline tables.
const BaseCreator = "base"

var (
	// ErrDuplicateNamedID is returned when binding a named id that is already
	// registered for the kind.
	ErrDuplicateNamedID = errors.New("named id already registered")
	// ErrNotFound is returned when no entry matches a reference.
	ErrNotFound = errors.New("content not found")
	// ErrUnknownKind is returned for a kind that was never registered.
	ErrUnknownKind = errors.New("unknown content kind")
	// ErrUnknownTable is returned for a table the kind is not stored in.
	ErrUnknownTable = errors.New("unknown table")
	// ErrInvalidNamedID is returned for a named id that breaks the naming
	// rules.
	ErrInvalidNamedID = errors.New("invalid named id")
)

// Entry is one registered piece of content.
type Entry struct {
	Kind           string `json:"kind" yaml:"kind"`
	NamedID        string `json:"namedId,omitempty" yaml:"namedId,omitempty"`
	GameID         int    `json:"gameId" yaml:"gameId"`
	CreatorID      string `json:"creatorId" yaml:"creatorId"`
	CurrentOwnerID string `json:"currentOwnerId" yaml:"currentOwnerId"`
}

// Tables are the engines one kind is stored in, keyed by table name.
type Tables struct {
	Main      map[string]*table.Table
	Localized map[string]*table.Localized
	// Order is nil for kinds without a display order.
	Order *table.Order
}

type kindState struct {
	kind    leaves.Kind
	tables  Tables
	pool    *idalloc.Pool
	byName  map[string]*Entry
	byID    map[int]*Entry
	baseLen int
}

// Option configures a Registry.
type Option func(*Registry)

// WithSink sends provenance events to sink.
func WithSink(sink ProvenanceSink) Option {
	return func(r *Registry) { r.sink = sink }
}

// Registry holds the entries of every registered kind.
type Registry struct {
	kinds map[string]*kindState
	sink  ProvenanceSink
}

// New creates an empty registry. Without WithSink, provenance events are
// logged through slog's default logger.
func New(opts ...Option) *Registry {
	r := &Registry{kinds: make(map[string]*kindState)}
	for _, opt := range opts {
		opt(r)
	}
	if r.sink == nil {
		r.sink = LogSink{Logger: slog.Default()}
	}
	return r
}

// RegisterKind adds a content kind backed by the given tables and seeds one
// unnamed base entry for every baseline game id. Registering a kind twice is
// a programming error and panics.
func (r *Registry) RegisterKind(kind leaves.Kind, tables Tables) {
	if _, exists := r.kinds[kind.Name]; exists {
		panic(fmt.Sprintf("content kind with name '%s' already registered", kind.Name))
	}
	slog.Debug("Registering content kind.", "kind", kind.Name)

	s := &kindState{
		kind:   kind,
		tables: tables,
		byName: make(map[string]*Entry),
		byID:   make(map[int]*Entry),
	}
	for _, t := range tables.Main {
		s.baseLen = max(s.baseLen, t.Len())
	}
	for _, t := range tables.Localized {
		s.baseLen = max(s.baseLen, t.Len())
	}

	existing := make([]int, s.baseLen)
	for id := range s.baseLen {
		existing[id] = id
		s.byID[id] = &Entry{Kind: kind.Name, GameID: id, CreatorID: BaseCreator, CurrentOwnerID: BaseCreator}
	}
	s.pool = idalloc.NewPool(kind.Domain, existing...)
	r.kinds[kind.Name] = s
}

// Validate checks that every registered kind has an engine for each of its
// tables and that all of them agree on the game id sequence.
func (r *Registry) Validate() error {
	var errs []string
	for _, name := range r.Kinds() {
		s := r.kinds[name]
		for _, def := range s.kind.Tables {
			t, ok := s.tables.Main[def.Name]
			switch {
			case !ok:
				errs = append(errs, fmt.Sprintf("kind '%s': table '%s' was not provided", name, def.Name))
			case t.Shape() != def.Shape:
				errs = append(errs, fmt.Sprintf("kind '%s': table '%s' holds %s records, want %s", name, def.Name, t.Shape().Name, def.Shape.Name))
			case t.Len() != s.baseLen:
				errs = append(errs, fmt.Sprintf("kind '%s': table '%s' has %d lines, other tables of the kind have %d", name, def.Name, t.Len(), s.baseLen))
			}
		}
		for _, def := range s.kind.Localized {
			t, ok := s.tables.Localized[def.Name]
			switch {
			case !ok:
				errs = append(errs, fmt.Sprintf("kind '%s': localized table '%s' was not provided", name, def.Name))
			case len(t.Languages()) == 0:
				errs = append(errs, fmt.Sprintf("kind '%s': localized table '%s' has no languages", name, def.Name))
			case t.Len() != s.baseLen:
				errs = append(errs, fmt.Sprintf("kind '%s': localized table '%s' has %d lines, other tables of the kind have %d", name, def.Name, t.Len(), s.baseLen))
			}
		}
		if s.kind.Order != "" && s.tables.Order == nil {
			errs = append(errs, fmt.Sprintf("kind '%s': order table '%s' was not provided", name, s.kind.Order))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Kinds returns the registered kind names in sorted order.
func (r *Registry) Kinds() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Kind returns the descriptor of a registered kind.
func (r *Registry) Kind(name string) (leaves.Kind, bool) {
	s, ok := r.kinds[name]
	if !ok {
		return leaves.Kind{}, false
	}
	return s.kind, true
}

func (r *Registry) state(kind string) (*kindState, error) {
	s, ok := r.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return s, nil
}

// Seed names baseline entries: namedIDs[i] names game id i. Empty names are
// skipped. Seeding is meant for the host's own enum names, so only
// uniqueness and the id range are checked.
func (r *Registry) Seed(kind string, namedIDs []string) error {
	s, err := r.state(kind)
	if err != nil {
		return err
	}
	if len(namedIDs) > s.baseLen {
		return fmt.Errorf("%w: %d names for %d baseline %s entries", ErrNotFound, len(namedIDs), s.baseLen, kind)
	}
	for id, name := range namedIDs {
		if name == "" {
			continue
		}
		if other, dup := s.byName[name]; dup && other.GameID != id {
			return fmt.Errorf("%w: %s %q names game ids %d and %d", ErrDuplicateNamedID, kind, name, other.GameID, id)
		}
		e := s.byID[id]
		if e.NamedID != "" {
			delete(s.byName, e.NamedID)
		}
		e.NamedID = name
		s.byName[name] = e
	}
	return nil
}

// Lookup finds an entry by reference.
func (r *Registry) Lookup(kind string, ref Ref) (Entry, bool) {
	s, err := r.state(kind)
	if err != nil {
		return Entry{}, false
	}
	e, ok := s.find(ref)
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Entries returns every entry of a kind in game id order.
func (r *Registry) Entries(kind string) []Entry {
	s, ok := r.kinds[kind]
	if !ok {
		return nil
	}
	ids := make([]int, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]Entry, len(ids))
	for i, id := range ids {
		out[i] = *s.byID[id]
	}
	return out
}

func (s *kindState) find(ref Ref) (*Entry, bool) {
	if ref.byGameID {
		e, ok := s.byID[ref.gameID]
		return e, ok
	}
	e, ok := s.byName[ref.namedID]
	return e, ok
}
