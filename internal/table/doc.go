// Package table is the patch engine for the host's delimited text tables.
//
// A Table holds one table's baseline lines and lets extensions append new
// records or override existing ones by game id. Localized keeps one Table
// per language with fallback to the lowest language key, and Order keeps a
// kind's display order. Each of them serializes exactly once per session,
// after every mutation.
package table
