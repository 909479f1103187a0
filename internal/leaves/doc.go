// Package leaves declares the host's content kinds as data.
//
// Every kind is a set of record shapes bound to the host tables that store
// them, one line per game id. The codec does the parsing; nothing here holds
// per-kind logic beyond field layouts and the defaults a new entry starts
// with.
package leaves
