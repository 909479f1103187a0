package registry

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/vk/rootloader/internal/codec"
	"github.com/vk/rootloader/internal/table"
)

// BindNew registers namedID as a new entry of kind created by creatorID. The
// entry gets the next game id of the kind and a default line in every table
// the kind is stored in. Nothing changes when it fails.
func (r *Registry) BindNew(namedID, kind, creatorID string) (*Handle, error) {
	s, err := r.state(kind)
	if err != nil {
		return nil, err
	}
	if err := ValidateNamedID(namedID); err != nil {
		return nil, err
	}
	if existing, dup := s.byName[namedID]; dup {
		return nil, fmt.Errorf("%w: %s %q is game id %d, created by %s", ErrDuplicateNamedID, kind, namedID, existing.GameID, existing.CreatorID)
	}

	gameID, err := s.pool.Peek()
	if err != nil {
		return nil, err
	}
	if err := s.checkAppendable(gameID); err != nil {
		return nil, err
	}

	for _, name := range slices.Sorted(maps.Keys(s.tables.Main)) {
		t := s.tables.Main[name]
		if _, err := t.AddNew(codec.New(t.Shape())); err != nil {
			return nil, err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(s.tables.Localized)) {
		t := s.tables.Localized[name]
		if _, err := t.AddNew(t.Languages()[0], codec.New(t.Shape())); err != nil {
			return nil, err
		}
	}
	s.pool.Reserve(gameID)

	e := &Entry{Kind: kind, NamedID: namedID, GameID: gameID, CreatorID: creatorID, CurrentOwnerID: creatorID}
	s.byName[namedID] = e
	s.byID[gameID] = e
	slog.Debug("Bound new content.", "kind", kind, "named_id", namedID, "game_id", gameID, "creator", creatorID)

	return &Handle{reg: r, s: s, entry: e, actor: creatorID}, nil
}

// checkAppendable makes sure every table can take gameID as its next line,
// and the display order can take it last, before any of them is written.
func (s *kindState) checkAppendable(gameID int) error {
	if o := s.tables.Order; o != nil {
		if err := o.CanAppend(gameID); err != nil {
			return err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(s.tables.Main)) {
		t := s.tables.Main[name]
		if err := appendable(name, t.Mutable(), t.Len(), gameID); err != nil {
			return err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(s.tables.Localized)) {
		t := s.tables.Localized[name]
		if len(t.Languages()) == 0 {
			return &table.Error{Table: name, Op: "add", GameID: gameID, Err: fmt.Errorf("%w: no languages", table.ErrUnknownLanguage)}
		}
		if err := appendable(name, t.Mutable(), t.Len(), gameID); err != nil {
			return err
		}
	}
	return nil
}

func appendable(name string, mutable bool, length, gameID int) error {
	if !mutable {
		return &table.Error{Table: name, Op: "add", GameID: gameID, Err: table.ErrReadOnly}
	}
	if length != gameID {
		return &table.Error{Table: name, Op: "add", GameID: gameID, Err: fmt.Errorf("%w: next line would be %d", table.ErrOutOfRange, length)}
	}
	return nil
}

// BindExisting returns a handle on an existing entry for requestorID.
// Mutations through the handle override the entry's lines and make
// requestorID its current owner.
func (r *Registry) BindExisting(ref Ref, kind, requestorID string) (*Handle, error) {
	s, err := r.state(kind)
	if err != nil {
		return nil, err
	}
	e, ok := s.find(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, ref)
	}
	return &Handle{reg: r, s: s, entry: e, actor: requestorID}, nil
}
