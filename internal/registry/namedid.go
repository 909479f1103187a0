package registry

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Ref points at an entry either by named id or by game id.
type Ref struct {
	namedID  string
	gameID   int
	byGameID bool
}

// ByName refers to an entry by its named id.
func ByName(namedID string) Ref { return Ref{namedID: namedID} }

// ByGameID refers to an entry by its game id.
func ByGameID(gameID int) Ref { return Ref{gameID: gameID, byGameID: true} }

func (r Ref) String() string {
	if r.byGameID {
		return "#" + strconv.Itoa(r.gameID)
	}
	return strconv.Quote(r.namedID)
}

// ValidateNamedID checks a named id against the host's enum naming rules.
// Named ids end up as enum value names in the host, which parses a leading
// digit or sign as a number and splits comma separated lists of names.
func ValidateNamedID(namedID string) error {
	switch {
	case namedID == "":
		return fmt.Errorf("%w: empty", ErrInvalidNamedID)
	case strings.TrimSpace(namedID) != namedID:
		return fmt.Errorf("%w: %q has leading or trailing whitespace", ErrInvalidNamedID, namedID)
	case unicode.IsDigit(rune(namedID[0])) || namedID[0] == '-' || namedID[0] == '+':
		return fmt.Errorf("%w: %q starts with a digit or sign", ErrInvalidNamedID, namedID)
	case strings.ContainsRune(namedID, ','):
		return fmt.Errorf("%w: %q contains a comma", ErrInvalidNamedID, namedID)
	}
	return nil
}
