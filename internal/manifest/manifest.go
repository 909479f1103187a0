package manifest

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalid is wrapped by every decoding and validation failure.
var ErrInvalid = errors.New("invalid manifest")

// Dependency names another bud that must, or may, load first.
type Dependency struct {
	ID       string `json:"id" yaml:"id"`
	Optional bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// Incompatibility names a bud that must not be active alongside this one.
type Incompatibility struct {
	ID string `json:"id" yaml:"id"`
}

// Manifest is the identity and load constraints of one bud.
type Manifest struct {
	AssemblyIdentity  string            `json:"assemblyIdentity" yaml:"assemblyIdentity"`
	ID                string            `json:"id" yaml:"id"`
	DisplayName       string            `json:"displayName" yaml:"displayName"`
	Version           string            `json:"version" yaml:"version"`
	Author            string            `json:"author" yaml:"author"`
	Dependencies      []Dependency      `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Incompatibilities []Incompatibility `json:"incompatibilities,omitempty" yaml:"incompatibilities,omitempty"`
}

// SemVer returns the version in canonical "vMAJOR.MINOR.PATCH" form, or ""
// when it is not a semantic version. The leading "v" is optional in
// manifests.
func (m *Manifest) SemVer() string {
	v := strings.TrimSpace(m.Version)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.Canonical(v)
}

// CompareVersions orders two manifests by semantic version, like
// strings.Compare. Invalid versions sort before valid ones.
func CompareVersions(a, b *Manifest) int {
	return semver.Compare(a.SemVer(), b.SemVer())
}

// HardDependencies returns the ids of the non-optional dependencies.
func (m *Manifest) HardDependencies() []string {
	var ids []string
	for _, d := range m.Dependencies {
		if !d.Optional {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// Validate checks that the required fields are present, the version is a
// semantic version and no constraint names the bud itself.
func (m *Manifest) Validate() error {
	var problems []string
	required := []struct {
		name, value string
	}{
		{"assemblyIdentity", m.AssemblyIdentity},
		{"id", m.ID},
		{"displayName", m.DisplayName},
		{"version", m.Version},
		{"author", m.Author},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			problems = append(problems, fmt.Sprintf("%s is required", f.name))
		}
	}
	if m.ID != strings.TrimSpace(m.ID) {
		problems = append(problems, fmt.Sprintf("id %q has surrounding whitespace", m.ID))
	}
	if m.Version != "" && m.SemVer() == "" {
		problems = append(problems, fmt.Sprintf("version %q is not a semantic version", m.Version))
	}

	seen := make(map[string]bool)
	for i, d := range m.Dependencies {
		switch {
		case strings.TrimSpace(d.ID) == "":
			problems = append(problems, fmt.Sprintf("dependency %d has no id", i))
		case d.ID == m.ID:
			problems = append(problems, "a bud cannot depend on itself")
		case seen[d.ID]:
			problems = append(problems, fmt.Sprintf("dependency %q is listed twice", d.ID))
		}
		seen[d.ID] = true
	}
	for i, inc := range m.Incompatibilities {
		switch {
		case strings.TrimSpace(inc.ID) == "":
			problems = append(problems, fmt.Sprintf("incompatibility %d has no id", i))
		case inc.ID == m.ID:
			problems = append(problems, "a bud cannot be incompatible with itself")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
