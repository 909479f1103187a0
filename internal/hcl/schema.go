package hcl

import "github.com/zclconf/go-cty/cty"

// fileRoot is the top level of a content file.
type fileRoot struct {
	Contents []*contentBlock `hcl:"content,block"`
}

type contentBlock struct {
	Kind     string        `hcl:"kind,label"`
	Ref      string        `hcl:"ref,label"`
	Existing *bool         `hcl:"existing,optional"`
	Tables   []*tableBlock `hcl:"table,block"`
	Texts    []*textBlock  `hcl:"text,block"`
}

type tableBlock struct {
	Name   string    `hcl:"name,label"`
	Fields cty.Value `hcl:"fields"`
}

type textBlock struct {
	Name     string    `hcl:"name,label"`
	Language cty.Value `hcl:"language"`
	Fields   cty.Value `hcl:"fields"`
}
