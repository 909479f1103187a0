package table

import (
	"errors"
	"fmt"
)

var (
	// ErrReadOnly is returned when mutating a table not opened for mutation.
	ErrReadOnly = errors.New("table is read-only")
	// ErrOutOfRange is returned for a game id the table has no line for.
	ErrOutOfRange = errors.New("game id out of range")
	// ErrKindMismatch is returned when a record's shape is not the table's.
	ErrKindMismatch = errors.New("record kind mismatch")
	// ErrAlreadySerialized is returned when a table is used after its one
	// serialization of the session.
	ErrAlreadySerialized = errors.New("table already serialized")
	// ErrUnknownLanguage is returned for a language key a localized table
	// was not opened with.
	ErrUnknownLanguage = errors.New("unknown language")
	// ErrDuplicateOrder is returned when a game id is already in an order.
	ErrDuplicateOrder = errors.New("game id already ordered")
)

// Error locates a failed table operation.
type Error struct {
	Table  string
	Op     string
	GameID int
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("table %s: %s %d: %v", e.Table, e.Op, e.GameID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
