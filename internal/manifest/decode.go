package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"
)

// File names a bud directory may carry, in lookup order.
var FileNames = []string{"manifest.json", "manifest.yaml", "manifest.yml", "manifest.hcl"}

// Decode parses a manifest, picking the format from the file name.
func Decode(filename string, data []byte) (*Manifest, error) {
	switch filepath.Ext(filename) {
	case ".json":
		return DecodeJSON(data)
	case ".yaml", ".yml":
		return DecodeYAML(data)
	case ".hcl":
		return DecodeHCL(filename, data)
	default:
		return nil, fmt.Errorf("%w: unsupported manifest format %q", ErrInvalid, filepath.Ext(filename))
	}
}

// DecodeJSON parses a manifest.json. Unknown keys are rejected.
func DecodeJSON(data []byte) (*Manifest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return &m, nil
}

// DecodeYAML parses a manifest.yaml. Unknown keys are rejected.
func DecodeYAML(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return &m, nil
}

// hclRoot is the shape of a manifest.hcl:
//
//	bud "example.sword" {
//	  assembly_identity = "Sword.dll"
//	  display_name      = "Sword"
//	  version           = "1.0.0"
//	  author            = "someone"
//
//	  dependency "example.core" {}
//	  dependency "example.music" { optional = true }
//	  incompatibility "example.axe" {}
//	}
type hclRoot struct {
	Bud *hclBud `hcl:"bud,block"`
}

type hclBud struct {
	ID                string               `hcl:"id,label"`
	AssemblyIdentity  string               `hcl:"assembly_identity"`
	DisplayName       string               `hcl:"display_name"`
	Version           string               `hcl:"version"`
	Author            string               `hcl:"author"`
	Dependencies      []*hclDependency     `hcl:"dependency,block"`
	Incompatibilities []*hclIncompatibility `hcl:"incompatibility,block"`
}

type hclDependency struct {
	ID       string `hcl:"id,label"`
	Optional *bool  `hcl:"optional,optional"`
}

type hclIncompatibility struct {
	ID string `hcl:"id,label"`
}

// DecodeHCL parses a manifest.hcl holding exactly one bud block.
func DecodeHCL(filename string, data []byte) (*Manifest, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, diags)
	}

	var root hclRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, diags)
	}
	if root.Bud == nil {
		return nil, fmt.Errorf("%w: %s has no bud block", ErrInvalid, filename)
	}
	return root.Bud.translate(), nil
}

func (b *hclBud) translate() *Manifest {
	m := &Manifest{
		AssemblyIdentity: b.AssemblyIdentity,
		ID:               b.ID,
		DisplayName:      b.DisplayName,
		Version:          b.Version,
		Author:           b.Author,
	}
	for _, d := range b.Dependencies {
		m.Dependencies = append(m.Dependencies, Dependency{ID: d.ID, Optional: d.Optional != nil && *d.Optional})
	}
	for _, inc := range b.Incompatibilities {
		m.Incompatibilities = append(m.Incompatibilities, Incompatibility{ID: inc.ID})
	}
	return m
}
