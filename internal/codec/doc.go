// Package codec implements the host's delimited text record format.
//
// Every table line the host reads is one record: a fixed sequence of fields
// joined by a per-kind delimiter. Fields are scalars, lists of scalars or
// lists of nested records, and each nesting level uses its own delimiter so a
// strict positional split recovers the structure.
//
// Record kinds are declared as data with a Shape rather than as one type per
// kind. A parsed Record keeps the raw text of every value it has not been
// asked to change, which is what makes parse then serialize byte-identical
// for untouched baseline lines.
package codec
