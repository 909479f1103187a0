// Package idalloc hands out fresh integer identifiers for a content category.
//
// The host addresses content by small dense integers (a line position in a
// data table, or the numeric value behind a closed enumeration). Extensions
// that mint new content need identifiers that never collide with what the
// host already ships or with what another extension minted earlier in the
// same activation pass.
//
// NextID is the pure rule: the successor of the largest known identifier,
// or zero for an empty category. Pool wraps that rule with the bookkeeping a
// caller needs between calls so consecutive allocations never repeat.
package idalloc
