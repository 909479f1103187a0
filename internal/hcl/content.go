package hcl

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vk/rootloader/api"
	"github.com/vk/rootloader/internal/ctxlog"
	"github.com/vk/rootloader/internal/locale"
)

// Block is one decoded content block.
type Block struct {
	File string
	Kind string
	// NamedID is the label of the block: the named id of new content, or
	// the named id or game id of existing content.
	NamedID  string
	Ref      api.Ref
	Existing bool
	Tables   []TableValues
}

// TableValues are the fields one block writes to one table. Language is -1
// for non-localized tables.
type TableValues struct {
	Table    string
	Language int
	Fields   map[string]any
}

func (b Block) String() string {
	verb := "content"
	if b.Existing {
		verb = "existing content"
	}
	return fmt.Sprintf("%s: %s %s %s", b.File, verb, b.Kind, b.Ref)
}

func (c *contentBlock) translate(langs *locale.Table) (Block, error) {
	b := Block{Kind: c.Kind, NamedID: c.Ref, Existing: c.Existing != nil && *c.Existing}
	b.Ref = api.ByName(c.Ref)
	if b.Existing {
		if id, err := strconv.Atoi(c.Ref); err == nil {
			b.Ref = api.ByGameID(id)
		}
	}

	for _, t := range c.Tables {
		f, err := fields(t.Fields)
		if err != nil {
			return Block{}, fmt.Errorf("content %s %s: table %s: %w", c.Kind, c.Ref, t.Name, err)
		}
		b.Tables = append(b.Tables, TableValues{Table: t.Name, Language: -1, Fields: f})
	}
	for _, t := range c.Texts {
		lang, err := language(t.Language, langs)
		if err != nil {
			return Block{}, fmt.Errorf("content %s %s: text %s: %w", c.Kind, c.Ref, t.Name, err)
		}
		f, err := fields(t.Fields)
		if err != nil {
			return Block{}, fmt.Errorf("content %s %s: text %s: %w", c.Kind, c.Ref, t.Name, err)
		}
		b.Tables = append(b.Tables, TableValues{Table: t.Name, Language: lang, Fields: f})
	}
	return b, nil
}

// Content is the extension built from a bud's content files.
type Content struct {
	Blocks []Block
}

// Activate applies every block in order and stops at the first failure.
func (c *Content) Activate(ctx context.Context, v *api.Venus) error {
	logger := ctxlog.FromContext(ctx)
	for _, b := range c.Blocks {
		logger.Debug("Applying content block.", "block", b.String())
		if err := b.apply(v); err != nil {
			return fmt.Errorf("%s: %w", b, err)
		}
	}
	return nil
}

func (b Block) apply(v *api.Venus) error {
	var (
		content *api.Content
		err     error
	)
	if b.Existing {
		content, err = v.Request(b.Kind, b.Ref)
	} else {
		content, err = v.Register(b.Kind, b.NamedID)
	}
	if err != nil {
		return err
	}

	for _, t := range b.Tables {
		if t.Language < 0 {
			err = content.SetFields(t.Table, t.Fields)
		} else {
			err = content.SetLocalizedFields(t.Table, t.Language, t.Fields)
		}
		if err != nil {
			return fmt.Errorf("table %s: %w", t.Table, err)
		}
	}
	return nil
}
