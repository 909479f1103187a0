// Package manifest reads and validates bud manifests.
//
// A bud directory describes itself in manifest.json, manifest.yaml or
// manifest.hcl. All three decode into the same Manifest. Discover walks a
// buds directory and returns one Candidate per bud, keeping read and
// validation failures on the candidate instead of stopping, so the resolver
// can report every problem in one pass.
package manifest
