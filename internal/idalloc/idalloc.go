package idalloc

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrDomain reports that a category cannot be used as an identifier space.
// It signals a programmer error and is never worth retrying.
var ErrDomain = errors.New("identifier domain error")

// NextID returns max(existing)+1, or 0 when existing is empty.
func NextID(existing map[int]struct{}) int {
	if len(existing) == 0 {
		return 0
	}
	highest := math.MinInt
	for id := range existing {
		if id > highest {
			highest = id
		}
	}
	return highest + 1
}

// Domain describes the identifier space of one content category.
type Domain struct {
	// Name is used in error messages and logs.
	Name string
	// Enumerable must be true for any domain that identifiers can be
	// allocated from. Categories keyed by something other than a dense
	// integer space (free-form strings, floats) leave it false.
	Enumerable bool
	// First is the identifier handed out when the category is empty.
	First int
}

// Pool tracks the identifiers known for one category and allocates new ones.
// A Pool is not safe for concurrent use; activation is single-threaded.
type Pool struct {
	domain Domain
	ids    map[int]struct{}
}

// NewPool creates a pool seeded with the identifiers already in use.
func NewPool(domain Domain, existing ...int) *Pool {
	p := &Pool{
		domain: domain,
		ids:    make(map[int]struct{}, len(existing)),
	}
	for _, id := range existing {
		p.ids[id] = struct{}{}
	}
	return p
}

// Domain returns the pool's domain descriptor.
func (p *Pool) Domain() Domain {
	return p.domain
}

// Peek returns the identifier the next Allocate call would return without
// recording it.
func (p *Pool) Peek() (int, error) {
	if !p.domain.Enumerable {
		return 0, fmt.Errorf("%w: category %q is not an enumerable integer space", ErrDomain, p.domain.Name)
	}
	if len(p.ids) == 0 {
		return p.domain.First, nil
	}
	for id := range p.ids {
		if id == math.MaxInt {
			return 0, fmt.Errorf("%w: category %q exhausted its identifier space", ErrDomain, p.domain.Name)
		}
	}
	return NextID(p.ids), nil
}

// Allocate returns a fresh identifier and records it as in use.
func (p *Pool) Allocate() (int, error) {
	id, err := p.Peek()
	if err != nil {
		return 0, err
	}
	p.ids[id] = struct{}{}
	return id, nil
}

// Reserve records id as in use. Reserving a known id is a no-op.
func (p *Pool) Reserve(id int) {
	p.ids[id] = struct{}{}
}

// Contains reports whether id is known to the pool.
func (p *Pool) Contains(id int) bool {
	_, ok := p.ids[id]
	return ok
}

// Len returns the number of known identifiers.
func (p *Pool) Len() int {
	return len(p.ids)
}

// IDs returns the known identifiers in ascending order.
func (p *Pool) IDs() []int {
	out := make([]int, 0, len(p.ids))
	for id := range p.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
