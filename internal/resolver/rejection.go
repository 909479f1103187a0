package resolver

import (
	"fmt"

	"github.com/vk/rootloader/internal/manifest"
)

// Reason is why a manifest was rejected.
type Reason string

const (
	MalformedManifest     Reason = "MalformedManifest"
	DuplicateID           Reason = "DuplicateId"
	Incompatible          Reason = "Incompatible"
	MissingHardDependency Reason = "MissingHardDependency"
	CyclicDependency      Reason = "CyclicDependency"
)

// Rejection records one manifest that will not be activated.
type Rejection struct {
	// ID is the manifest id, or the bud directory name when the manifest
	// could not be read.
	ID     string `json:"id" yaml:"id"`
	Path   string `json:"path" yaml:"path"`
	Reason Reason `json:"reason" yaml:"reason"`
	Detail string `json:"detail" yaml:"detail"`
	// Err is the decoding or validation error of a malformed manifest.
	Err error `json:"-" yaml:"-"`

	manifest *manifest.Manifest
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("bud %s rejected (%s): %s", r.ID, r.Reason, r.Detail)
}

func (r *Rejection) Unwrap() error { return r.Err }

// Manifest returns the rejected manifest, nil for unreadable ones.
func (r *Rejection) Manifest() *manifest.Manifest { return r.manifest }
