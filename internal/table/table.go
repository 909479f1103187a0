package table

import (
	"fmt"
	"strings"

	"github.com/vk/rootloader/internal/codec"
)

// Table owns the full text of one host data table. Line n holds the record
// whose game id is n. Lines are kept raw: only lines that are overridden are
// ever re-serialized, so baseline data the codec does not understand
// survives a session untouched.
type Table struct {
	name       string
	shape      *codec.Shape
	lines      []string
	trailingLF bool
	mutable    bool
	touched    bool
	serialized bool

	// holes marks placeholder lines of a sparse localized table.
	holes map[int]struct{}
}

// Open loads a table from its baseline blob. Lines are split on "\n" only;
// a trailing line feed is remembered and written back.
func Open(name string, shape *codec.Shape, blob string, mutable bool) *Table {
	t := &Table{name: name, shape: shape, mutable: mutable}
	if strings.HasSuffix(blob, "\n") {
		t.trailingLF = true
		blob = blob[:len(blob)-1]
	}
	if blob != "" || t.trailingLF {
		t.lines = strings.Split(blob, "\n")
	}
	return t
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Shape returns the shape of the table's records.
func (t *Table) Shape() *codec.Shape { return t.shape }

// Len returns the number of lines, which is also the next game id.
func (t *Table) Len() int { return len(t.lines) }

// Touched reports whether any line was added or overridden.
func (t *Table) Touched() bool { return t.touched }

// Mutable reports whether the table was opened for mutation.
func (t *Table) Mutable() bool { return t.mutable }

func (t *Table) fail(op string, gameID int, err error) error {
	return &Error{Table: t.name, Op: op, GameID: gameID, Err: err}
}

func (t *Table) checkWrite(op string, gameID int, rec *codec.Record) error {
	if t.serialized {
		return t.fail(op, gameID, ErrAlreadySerialized)
	}
	if !t.mutable {
		return t.fail(op, gameID, ErrReadOnly)
	}
	if rec.Shape() != t.shape {
		return t.fail(op, gameID, fmt.Errorf("%w: got %s, want %s", ErrKindMismatch, rec.Shape().Name, t.shape.Name))
	}
	return nil
}

// AddNew appends rec as a new line and returns its game id.
func (t *Table) AddNew(rec *codec.Record) (int, error) {
	gameID := len(t.lines)
	if err := t.checkWrite("add", gameID, rec); err != nil {
		return 0, err
	}
	t.lines = append(t.lines, rec.Serialize())
	t.touched = true
	return gameID, nil
}

// Override replaces the line at gameID with rec.
func (t *Table) Override(gameID int, rec *codec.Record) error {
	if err := t.checkWrite("override", gameID, rec); err != nil {
		return err
	}
	if gameID < 0 || gameID >= len(t.lines) {
		return t.fail("override", gameID, fmt.Errorf("%w: table has %d lines", ErrOutOfRange, len(t.lines)))
	}
	t.lines[gameID] = rec.Serialize()
	delete(t.holes, gameID)
	t.touched = true
	return nil
}

// Line returns the raw text at gameID.
func (t *Table) Line(gameID int) (string, error) {
	if !t.has(gameID) {
		return "", t.fail("read", gameID, fmt.Errorf("%w: table has %d lines", ErrOutOfRange, len(t.lines)))
	}
	return t.lines[gameID], nil
}

// Read parses the line at gameID.
func (t *Table) Read(gameID int) (*codec.Record, error) {
	line, err := t.Line(gameID)
	if err != nil {
		return nil, err
	}
	rec, err := codec.Parse(t.shape, line)
	if err != nil {
		return nil, t.fail("read", gameID, err)
	}
	return rec, nil
}

func (t *Table) has(gameID int) bool {
	if gameID < 0 || gameID >= len(t.lines) {
		return false
	}
	_, hole := t.holes[gameID]
	return !hole
}

// SerializeAll renders the table back into one blob. It may be called once
// per session; the table rejects further use afterwards.
func (t *Table) SerializeAll() (string, error) {
	if len(t.holes) > 0 {
		return "", t.fail("serialize", len(t.lines), fmt.Errorf("%w: %d lines were never written", ErrOutOfRange, len(t.holes)))
	}
	return t.render(t.lines)
}

func (t *Table) render(lines []string) (string, error) {
	if t.serialized {
		return "", t.fail("serialize", len(t.lines), ErrAlreadySerialized)
	}
	t.serialized = true
	blob := strings.Join(lines, "\n")
	if t.trailingLF {
		blob += "\n"
	}
	return blob, nil
}

// reserve grows the table to n lines, marking the new ones as holes.
func (t *Table) reserve(n int) {
	for len(t.lines) < n {
		if t.holes == nil {
			t.holes = make(map[int]struct{})
		}
		t.holes[len(t.lines)] = struct{}{}
		t.lines = append(t.lines, "")
	}
}
