package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/rootloader/api"
	"github.com/vk/rootloader/internal/activation"
	"github.com/vk/rootloader/internal/ctxlog"
	"github.com/vk/rootloader/internal/fsutil"
	"github.com/vk/rootloader/internal/locale"
	"github.com/vk/rootloader/internal/manifest"
	"github.com/vk/rootloader/internal/resolver"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Content file locations inside a bud directory.
const (
	FileHCL    = "content.hcl"
	FileJSON   = "content.json"
	ContentDir = "content"
)

// Loader is the activation.Loader for declarative content.
type Loader struct {
	// Languages resolves language attributes. Defaults to locale.Default.
	Languages *locale.Table
}

// NewLoader creates a content loader over the given language table.
func NewLoader(langs *locale.Table) *Loader {
	return &Loader{Languages: langs}
}

// Load parses every content file of the bud. It returns activation.ErrNoEntry
// when the bud has none.
func (l *Loader) Load(ctx context.Context, a resolver.Activation) (api.Extension, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := contentFiles(a.Dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, activation.ErrNoEntry
	}
	logger.Debug("Discovered content files.", "bud", a.ID(), "count", len(files))

	evalCtx := l.evalContext(a.Manifest)
	parser := hclparse.NewParser()
	content := &Content{}
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read content file %s: %w", path, err)
		}
		blocks, err := l.parse(parser, path, src, evalCtx)
		if err != nil {
			return nil, err
		}
		content.Blocks = append(content.Blocks, blocks...)
	}
	return content, nil
}

// Parse decodes one content file on its own. The bud variable is bound to
// m, which may be nil.
func (l *Loader) Parse(filename string, src []byte, m *manifest.Manifest) ([]Block, error) {
	return l.parse(hclparse.NewParser(), filename, src, l.evalContext(m))
}

func (l *Loader) parse(parser *hclparse.Parser, filename string, src []byte, evalCtx *hcl.EvalContext) ([]Block, error) {
	var (
		file  *hcl.File
		diags hcl.Diagnostics
	)
	if strings.HasSuffix(filename, ".json") {
		file, diags = parser.ParseJSON(src, filename)
	} else {
		file, diags = parser.ParseHCL(src, filename)
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse content file %s: %w", filename, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode content file %s: %w", filename, diags)
	}

	blocks := make([]Block, 0, len(root.Contents))
	for _, c := range root.Contents {
		b, err := c.translate(l.languages())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		b.File = filename
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func (l *Loader) languages() *locale.Table {
	if l.Languages == nil {
		return locale.Default
	}
	return l.Languages
}

// evalContext exposes the language keys as lang.<tag> and the bud's own
// manifest as bud, along with a few string functions.
func (l *Loader) evalContext(m *manifest.Manifest) *hcl.EvalContext {
	langs := l.languages()
	keys := make(map[string]cty.Value)
	for _, key := range langs.Keys() {
		keys[langs.Name(key)] = cty.NumberIntVal(int64(key))
	}
	langVal := cty.EmptyObjectVal
	if len(keys) > 0 {
		langVal = cty.ObjectVal(keys)
	}

	bud := map[string]cty.Value{
		"id":      cty.StringVal(""),
		"version": cty.StringVal(""),
	}
	if m != nil {
		bud["id"] = cty.StringVal(m.ID)
		bud["version"] = cty.StringVal(m.Version)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"lang": langVal,
			"bud":  cty.ObjectVal(bud),
		},
		Functions: map[string]function.Function{
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
			"format": stdlib.FormatFunc,
			"join":   stdlib.JoinFunc,
			"concat": stdlib.ConcatFunc,
		},
	}
}

// contentFiles lists the content files of a bud directory in apply order.
func contentFiles(dir string) ([]string, error) {
	var files []string
	for _, name := range []string{FileHCL, FileJSON} {
		if path := filepath.Join(dir, name); fsutil.Exists(path) {
			files = append(files, path)
		}
	}
	var nested []string
	for _, ext := range []string{".hcl", ".json"} {
		found, err := fsutil.FindFilesByExtension(filepath.Join(dir, ContentDir), ext)
		if err != nil {
			return nil, fmt.Errorf("failed to list content files: %w", err)
		}
		nested = append(nested, found...)
	}
	slices.Sort(nested)
	return append(files, nested...), nil
}
