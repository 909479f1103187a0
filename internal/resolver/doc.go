// Package resolver decides which buds activate and in what order.
//
// Every discovered manifest moves from discovered to validated and ends
// either activated or rejected. Rejections are collected, never returned
// one at a time: malformed and duplicate manifests first, then
// incompatible pairs, hard dependency cycles, and finally manifests whose
// hard dependencies did not survive. The survivors are ordered so every
// hard dependency, and every optional one that is present, comes first.
package resolver
