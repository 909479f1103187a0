package api

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/vk/rootloader/internal/codec"
	"github.com/vk/rootloader/internal/leaves"
	"github.com/vk/rootloader/internal/registry"
)

// Content kinds.
const (
	Item      = leaves.Item
	Medal     = leaves.Medal
	SpyCard   = leaves.SpyCard
	Recipe    = leaves.Recipe
	Record    = leaves.Record
	Discovery = leaves.Discovery
	Quest     = leaves.Quest
	Skill     = leaves.Skill
	Music     = leaves.Music
	Enemy     = leaves.Enemy
	RankBonus = leaves.RankBonus
	AnimID    = leaves.AnimID

	TermacadePrize = leaves.TermacadePrize
)

// Ref points at existing content by named id or by game id.
type Ref = registry.Ref

// ByName refers to content by its named id.
func ByName(namedID string) Ref { return registry.ByName(namedID) }

// ByGameID refers to content by its game id.
func ByGameID(gameID int) Ref { return registry.ByGameID(gameID) }

// Venus is the registry as seen by one bud.
type Venus struct {
	budID  string
	reg    *registry.Registry
	logger *slog.Logger
}

// New returns the API handed to budID.
func New(budID string, reg *registry.Registry, logger *slog.Logger) *Venus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Venus{budID: budID, reg: reg, logger: logger.With("bud", budID)}
}

// BudID returns the id of the bud this API acts for.
func (v *Venus) BudID() string { return v.budID }

// Kinds returns the content kinds the host data provides.
func (v *Venus) Kinds() []string { return v.reg.Kinds() }

// Entries returns every entry of kind in game id order.
func (v *Venus) Entries(kind string) []registry.Entry { return v.reg.Entries(kind) }

// Register creates new content of kind. Kinds with a display order get the
// new entry appended to it. Nothing is bound when the order cannot take it.
func (v *Venus) Register(kind, namedID string) (*Content, error) {
	h, err := v.reg.BindNew(namedID, kind, v.budID)
	if err != nil {
		return nil, err
	}
	if k, _ := v.reg.Kind(kind); k.Order != "" {
		if err := h.AppendToOrder(); err != nil {
			return nil, err
		}
	}
	v.logger.Debug("Registered new content.", "kind", kind, "named_id", namedID, "game_id", h.Entry().GameID)
	return &Content{h: h}, nil
}

// Request returns existing content of kind for overriding.
func (v *Venus) Request(kind string, ref Ref) (*Content, error) {
	h, err := v.reg.BindExisting(ref, kind, v.budID)
	if err != nil {
		return nil, err
	}
	return &Content{h: h}, nil
}

// RegisterItem creates a new item.
func (v *Venus) RegisterItem(namedID string) (*ItemHandle, error) {
	c, err := v.Register(Item, namedID)
	if err != nil {
		return nil, err
	}
	return &ItemHandle{c}, nil
}

// RequestItem returns an existing item.
func (v *Venus) RequestItem(ref Ref) (*ItemHandle, error) {
	c, err := v.Request(Item, ref)
	if err != nil {
		return nil, err
	}
	return &ItemHandle{c}, nil
}

// RegisterMedal creates a new medal and appends it to the medal order.
func (v *Venus) RegisterMedal(namedID string) (*MedalHandle, error) {
	c, err := v.Register(Medal, namedID)
	if err != nil {
		return nil, err
	}
	return &MedalHandle{c}, nil
}

// RequestMedal returns an existing medal.
func (v *Venus) RequestMedal(ref Ref) (*MedalHandle, error) {
	c, err := v.Request(Medal, ref)
	if err != nil {
		return nil, err
	}
	return &MedalHandle{c}, nil
}

// RegisterSpyCard creates a new spy card and appends it to the card order.
func (v *Venus) RegisterSpyCard(namedID string) (*SpyCardHandle, error) {
	c, err := v.Register(SpyCard, namedID)
	if err != nil {
		return nil, err
	}
	return &SpyCardHandle{c}, nil
}

// RegisterRecipe creates a new cooking recipe.
func (v *Venus) RegisterRecipe(namedID string) (*RecipeHandle, error) {
	c, err := v.Register(Recipe, namedID)
	if err != nil {
		return nil, err
	}
	return &RecipeHandle{c}, nil
}

// RegisterRecord creates a new lore record.
func (v *Venus) RegisterRecord(namedID string) (*RecordHandle, error) {
	c, err := v.Register(Record, namedID)
	if err != nil {
		return nil, err
	}
	return &RecordHandle{c}, nil
}

// Content is a handle on one registered entry.
type Content struct {
	h *registry.Handle
}

// Kind returns the content kind.
func (c *Content) Kind() string { return c.h.Entry().Kind }

// GameID returns the id the host knows the content by.
func (c *Content) GameID() int { return c.h.Entry().GameID }

// NamedID returns the named id, empty for unnamed baseline content.
func (c *Content) NamedID() string { return c.h.Entry().NamedID }

// CreatorID returns the bud that created the content, or "base".
func (c *Content) CreatorID() string { return c.h.Entry().CreatorID }

// Entry returns the registry entry.
func (c *Content) Entry() registry.Entry { return c.h.Entry() }

// Set writes one field of a non-localized table. Values follow the field
// kind: strings, ints, floats, bools, []any for lists and map[string]any
// for nested records.
func (c *Content) Set(table, field string, value any) error {
	return c.h.Set(table, func(r *codec.Record) error {
		return r.Assign(field, value)
	})
}

// SetLocalized writes one field of a localized table for one language.
func (c *Content) SetLocalized(table string, lang int, field string, value any) error {
	return c.h.SetLocalized(table, lang, func(r *codec.Record) error {
		return r.Assign(field, value)
	})
}

// Get returns the raw text of one field of a non-localized table.
func (c *Content) Get(table, field string) (string, error) {
	rec, err := c.h.Record(table)
	if err != nil {
		return "", err
	}
	return rec.Raw(field)
}

// GetLocalized returns the raw text of one localized field.
func (c *Content) GetLocalized(table string, lang int, field string) (string, error) {
	rec, err := c.h.LocalizedRecord(table, lang)
	if err != nil {
		return "", err
	}
	return rec.Raw(field)
}

func (c *Content) update(table string, fn func(*codec.Record) error) error {
	return c.h.Set(table, fn)
}

func (c *Content) appendItem(table, list string, fields map[string]any) error {
	return c.update(table, func(r *codec.Record) error {
		item, err := r.NewItem(list)
		if err != nil {
			return err
		}
		for _, name := range slices.Sorted(maps.Keys(fields)) {
			if err := item.Assign(name, fields[name]); err != nil {
				return fmt.Errorf("%s item: %w", list, err)
			}
		}
		return r.AppendItem(list, item)
	})
}

// SetFields writes several fields of a non-localized table in one step. The
// table is left untouched when any field fails.
func (c *Content) SetFields(table string, fields map[string]any) error {
	return c.h.Set(table, assignAll(fields))
}

// SetLocalizedFields writes several fields of a localized table for one
// language in one step.
func (c *Content) SetLocalizedFields(table string, lang int, fields map[string]any) error {
	return c.h.SetLocalized(table, lang, assignAll(fields))
}

func assignAll(fields map[string]any) func(*codec.Record) error {
	return func(r *codec.Record) error {
		for _, name := range slices.Sorted(maps.Keys(fields)) {
			if err := r.Assign(name, fields[name]); err != nil {
				return err
			}
		}
		return nil
	}
}
