package table

import (
	"fmt"
	"maps"
	"slices"

	"github.com/vk/rootloader/internal/codec"
)

// Localized is one table per language key, all indexed by the same game id
// sequence. Languages may be sparse: a line written for one language only is
// read, and serialized, through the lowest language key that has it.
type Localized struct {
	name   string
	shape  *codec.Shape
	tables map[int]*Table
	keys   []int
	length int
}

// OpenLocalized loads a localized table from one baseline blob per language.
func OpenLocalized(name string, shape *codec.Shape, blobs map[int]string, mutable bool) *Localized {
	l := &Localized{name: name, shape: shape, tables: make(map[int]*Table, len(blobs))}
	for lang, blob := range blobs {
		t := Open(fmt.Sprintf("%s[%d]", name, lang), shape, blob, mutable)
		l.tables[lang] = t
		l.length = max(l.length, t.Len())
	}
	l.keys = slices.Sorted(maps.Keys(l.tables))
	return l
}

// Name returns the table name shared by every language.
func (l *Localized) Name() string { return l.name }

// Shape returns the shape of the table's records.
func (l *Localized) Shape() *codec.Shape { return l.shape }

// Languages returns the language keys in ascending order.
func (l *Localized) Languages() []int { return slices.Clone(l.keys) }

// Len returns the length of the game id sequence common to all languages.
func (l *Localized) Len() int { return l.length }

// Mutable reports whether the table was opened for mutation.
func (l *Localized) Mutable() bool {
	if len(l.keys) == 0 {
		return false
	}
	return l.tables[l.keys[0]].Mutable()
}

// Touched reports whether any language was written to.
func (l *Localized) Touched() bool {
	for _, t := range l.tables {
		if t.Touched() {
			return true
		}
	}
	return false
}

func (l *Localized) table(op string, lang, gameID int) (*Table, error) {
	t, ok := l.tables[lang]
	if !ok {
		return nil, &Error{Table: l.name, Op: op, GameID: gameID, Err: fmt.Errorf("%w: %d", ErrUnknownLanguage, lang)}
	}
	return t, nil
}

// AddNew appends a new game id to every language and writes rec for lang.
// The other languages fall back to the lowest language holding the line
// until they are written themselves.
func (l *Localized) AddNew(lang int, rec *codec.Record) (int, error) {
	gameID := l.length
	t, err := l.table("add", lang, gameID)
	if err != nil {
		return 0, err
	}
	if err := t.checkWrite("add", gameID, rec); err != nil {
		return 0, err
	}
	t.reserve(gameID)
	if _, err := t.AddNew(rec); err != nil {
		return 0, err
	}
	l.length++
	return gameID, nil
}

// Override replaces the line at gameID for lang.
func (l *Localized) Override(lang, gameID int, rec *codec.Record) error {
	t, err := l.table("override", lang, gameID)
	if err != nil {
		return err
	}
	if gameID < 0 || gameID >= l.length {
		return &Error{Table: t.name, Op: "override", GameID: gameID, Err: fmt.Errorf("%w: table has %d lines", ErrOutOfRange, l.length)}
	}
	if err := t.checkWrite("override", gameID, rec); err != nil {
		return err
	}
	t.reserve(gameID + 1)
	return t.Override(gameID, rec)
}

// Read parses the line at gameID for lang. When lang has no line for the id,
// the lowest language key holding one answers instead.
func (l *Localized) Read(lang, gameID int) (*codec.Record, error) {
	owner, ok := l.Owner(lang, gameID)
	if !ok {
		return nil, &Error{Table: l.name, Op: "read", GameID: gameID, Err: fmt.Errorf("%w: no language holds it", ErrOutOfRange)}
	}
	return l.tables[owner].Read(gameID)
}

// Owner returns the language key Read answers from for lang and gameID.
func (l *Localized) Owner(lang, gameID int) (int, bool) {
	if t, ok := l.tables[lang]; ok && t.has(gameID) {
		return lang, true
	}
	for _, k := range l.keys {
		if l.tables[k].has(gameID) {
			return k, true
		}
	}
	return 0, false
}

// SerializeAll renders every language. Lines a language never had are
// filled from the fallback language so all blobs have Len lines.
func (l *Localized) SerializeAll() (map[int]string, error) {
	out := make(map[int]string, len(l.tables))
	for _, lang := range l.keys {
		t := l.tables[lang]
		lines := make([]string, l.length)
		for id := range l.length {
			owner, ok := l.Owner(lang, id)
			if !ok {
				return nil, &Error{Table: t.name, Op: "serialize", GameID: id, Err: fmt.Errorf("%w: no language holds it", ErrOutOfRange)}
			}
			lines[id] = l.tables[owner].lines[id]
		}
		blob, err := t.render(lines)
		if err != nil {
			return nil, err
		}
		out[lang] = blob
	}
	return out, nil
}
