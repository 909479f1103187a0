package registry

import (
	"fmt"

	"github.com/vk/rootloader/internal/codec"
	"github.com/vk/rootloader/internal/table"
)

// Handle is one bud's view of a registered entry.
type Handle struct {
	reg   *Registry
	s     *kindState
	entry *Entry
	actor string
}

// Entry returns a snapshot of the entry.
func (h *Handle) Entry() Entry { return *h.entry }

// Actor returns the bud the handle acts for.
func (h *Handle) Actor() string { return h.actor }

func (h *Handle) main(name string) (*table.Table, error) {
	t, ok := h.s.tables.Main[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no table %s", ErrUnknownTable, h.entry.Kind, name)
	}
	return t, nil
}

func (h *Handle) localized(name string) (*table.Localized, error) {
	t, ok := h.s.tables.Localized[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no localized table %s", ErrUnknownTable, h.entry.Kind, name)
	}
	return t, nil
}

// Record parses the entry's current line in a main table. The result is a
// copy; write it back with Set.
func (h *Handle) Record(name string) (*codec.Record, error) {
	t, err := h.main(name)
	if err != nil {
		return nil, err
	}
	return t.Read(h.entry.GameID)
}

// LocalizedRecord parses the entry's current line in a localized table,
// falling back to the lowest language that has one.
func (h *Handle) LocalizedRecord(name string, lang int) (*codec.Record, error) {
	t, err := h.localized(name)
	if err != nil {
		return nil, err
	}
	return t.Read(lang, h.entry.GameID)
}

// Set reads the entry's line in a main table, lets fn edit it and writes it
// back. A failing fn leaves the table untouched.
func (h *Handle) Set(name string, fn func(*codec.Record) error) error {
	t, err := h.main(name)
	if err != nil {
		return err
	}
	rec, err := t.Read(h.entry.GameID)
	if err != nil {
		return err
	}
	if err := fn(rec); err != nil {
		return fmt.Errorf("%s %s: %w", h.entry.Kind, name, err)
	}
	if err := t.Override(h.entry.GameID, rec); err != nil {
		return err
	}
	h.touch("Set " + name)
	return nil
}

// SetLocalized is Set for one language of a localized table. Languages
// without their own line start from the fallback language's text.
func (h *Handle) SetLocalized(name string, lang int, fn func(*codec.Record) error) error {
	t, err := h.localized(name)
	if err != nil {
		return err
	}
	rec, err := t.Read(lang, h.entry.GameID)
	if err != nil {
		return err
	}
	if err := fn(rec); err != nil {
		return fmt.Errorf("%s %s[%d]: %w", h.entry.Kind, name, lang, err)
	}
	if err := t.Override(lang, h.entry.GameID, rec); err != nil {
		return err
	}
	h.touch(fmt.Sprintf("SetLocalized %s[%d]", name, lang))
	return nil
}

// AppendToOrder adds the entry at the end of its kind's display order.
func (h *Handle) AppendToOrder() error {
	o := h.s.tables.Order
	if o == nil {
		return fmt.Errorf("%w: %s has no order table", ErrUnknownTable, h.entry.Kind)
	}
	if err := o.AppendToOrder(h.entry.GameID); err != nil {
		return err
	}
	h.touch("AppendToOrder " + o.Name())
	return nil
}

func (h *Handle) touch(op string) {
	h.entry.CurrentOwnerID = h.actor
	if h.entry.CurrentOwnerID == h.entry.CreatorID {
		return
	}
	h.reg.sink.Record(ProvenanceEvent{
		OwnerID:   h.entry.CurrentOwnerID,
		Kind:      h.entry.Kind,
		NamedID:   h.entry.NamedID,
		GameID:    h.entry.GameID,
		CreatorID: h.entry.CreatorID,
		Operation: op,
	})
}
