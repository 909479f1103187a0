// Package registry is the content registry shared by every bud.
//
// Each content kind registers once with the tables that store it. Baseline
// entries are seeded from those tables and owned by the base game; buds then
// bind new entries, which get a fresh game id and a new line in every table
// of the kind, or bind existing ones, which they may override. The registry
// remembers who created each entry and who touched it last, and reports a
// provenance event whenever someone other than the creator mutates it.
//
// The registry is not safe for concurrent use. Activation runs one bud at a
// time, and that ordering is what keeps the mappings consistent.
package registry
