package table

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Order is the display order of one content kind: a newline separated list
// of game ids. The baseline order is seeded once; extensions can only
// append after it.
type Order struct {
	name       string
	ids        []int
	seen       map[int]struct{}
	seeded     bool
	trailingLF bool
	touched    bool
	serialized bool
}

// NewOrder returns an empty, unseeded order.
func NewOrder(name string) *Order {
	return &Order{name: name, seen: make(map[int]struct{})}
}

// OpenOrder parses a baseline order blob and seeds a new order with it.
func OpenOrder(name, blob string) (*Order, error) {
	ids, err := ParseOrder(blob)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", name, err)
	}
	o := NewOrder(name)
	o.trailingLF = strings.HasSuffix(blob, "\n")
	if err := o.SeedBaseOrder(ids); err != nil {
		return nil, err
	}
	return o, nil
}

// ParseOrder reads the game ids of an order blob, one per line. Blank lines
// are skipped.
func ParseOrder(blob string) ([]int, error) {
	var ids []int
	for i, line := range strings.Split(blob, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		id, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %q is not a game id", i+1, line)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Name returns the order table name.
func (o *Order) Name() string { return o.name }

// Touched reports whether anything was appended after the seed.
func (o *Order) Touched() bool { return o.touched }

// SeedBaseOrder sets the baseline order. It must be called once, before any
// append.
func (o *Order) SeedBaseOrder(ids []int) error {
	if o.seeded || len(o.ids) > 0 {
		return &Error{Table: o.name, Op: "seed", GameID: -1, Err: errors.New("order already seeded")}
	}
	for _, id := range ids {
		if _, dup := o.seen[id]; dup {
			return &Error{Table: o.name, Op: "seed", GameID: id, Err: ErrDuplicateOrder}
		}
		o.seen[id] = struct{}{}
		o.ids = append(o.ids, id)
	}
	o.seeded = true
	return nil
}

// CanAppend returns the error AppendToOrder would return for gameID.
func (o *Order) CanAppend(gameID int) error {
	if o.serialized {
		return &Error{Table: o.name, Op: "append", GameID: gameID, Err: ErrAlreadySerialized}
	}
	if _, dup := o.seen[gameID]; dup {
		return &Error{Table: o.name, Op: "append", GameID: gameID, Err: ErrDuplicateOrder}
	}
	return nil
}

// AppendToOrder places gameID after every id already ordered.
func (o *Order) AppendToOrder(gameID int) error {
	if err := o.CanAppend(gameID); err != nil {
		return err
	}
	o.seen[gameID] = struct{}{}
	o.ids = append(o.ids, gameID)
	o.touched = true
	return nil
}

// Contains reports whether gameID is ordered.
func (o *Order) Contains(gameID int) bool {
	_, ok := o.seen[gameID]
	return ok
}

// Order returns a copy of the ordered game ids.
func (o *Order) Order() []int { return slices.Clone(o.ids) }

// SerializeOrder renders the order as one game id per line. Like a table, an
// order serializes once per session.
func (o *Order) SerializeOrder() (string, error) {
	if o.serialized {
		return "", &Error{Table: o.name, Op: "serialize", GameID: len(o.ids), Err: ErrAlreadySerialized}
	}
	o.serialized = true
	parts := make([]string, len(o.ids))
	for i, id := range o.ids {
		parts[i] = strconv.Itoa(id)
	}
	blob := strings.Join(parts, "\n")
	if o.trailingLF {
		blob += "\n"
	}
	return blob, nil
}
