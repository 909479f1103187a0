package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/rootloader/internal/codec"
	"github.com/vk/rootloader/internal/idalloc"
	"github.com/vk/rootloader/internal/leaves"
	"github.com/vk/rootloader/internal/table"
)

const (
	itemData = "30@HPRecover,5@SingleAlly\n12@TPRecover,2@SingleAlly\n"
	itemsEN  = "Crunchy Leaf@@Heals 3 HP.\nHoney Drop@@Heals 2 TP.\n"
	itemsJA  = "Kuranchi@@HP 3.\nHachimitsu@@TP 2.\n"
	medals   = "1@False@HPPlus,1@100@5@12\n"
	badgeEN  = "HP Plus@Raises HP by 1.@\n"
)

type fixture struct {
	reg       *Registry
	events    *Collector
	itemData  *table.Table
	items     *table.Localized
	medalData *table.Table
	order     *table.Order
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{events: &Collector{}}
	f.reg = New(WithSink(f.events))

	item, ok := leaves.Lookup(leaves.Item)
	require.True(t, ok)
	f.itemData = table.Open(leaves.TableItemData, leaves.ItemData, itemData, true)
	f.items = table.OpenLocalized(leaves.TableItems, leaves.ItemText, map[int]string{0: itemsEN, 1: itemsJA}, true)
	f.reg.RegisterKind(item, Tables{
		Main:      map[string]*table.Table{leaves.TableItemData: f.itemData},
		Localized: map[string]*table.Localized{leaves.TableItems: f.items},
	})
	require.NoError(t, f.reg.Seed(leaves.Item, []string{"CrunchyLeaf", "HoneyDrop"}))

	medal, ok := leaves.Lookup(leaves.Medal)
	require.True(t, ok)
	f.medalData = table.Open(leaves.TableBadgeData, leaves.MedalData, medals, true)
	f.order = table.NewOrder(leaves.TableBadgeOrder)
	require.NoError(t, f.order.SeedBaseOrder([]int{0}))
	f.reg.RegisterKind(medal, Tables{
		Main:      map[string]*table.Table{leaves.TableBadgeData: f.medalData},
		Localized: map[string]*table.Localized{leaves.TableBadgeName: table.OpenLocalized(leaves.TableBadgeName, leaves.MedalText, map[int]string{0: badgeEN}, true)},
		Order:     f.order,
	})

	require.NoError(t, f.reg.Validate())
	return f
}

func TestBindNewRejectsDuplicateNamedID(t *testing.T) {
	f := newFixture(t)

	sword, err := f.reg.BindNew("sword", leaves.Item, "modA")
	require.NoError(t, err)
	first := sword.Entry()
	assert.Equal(t, 2, first.GameID)

	_, err = f.reg.BindNew("sword", leaves.Item, "modB")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateNamedID))

	got, ok := f.reg.Lookup(leaves.Item, ByName("sword"))
	require.True(t, ok)
	assert.Equal(t, first, got)
	assert.Equal(t, 3, f.itemData.Len(), "the failed bind must not add a line")
	assert.Equal(t, 3, f.items.Len())
}

func TestBindNewAddsDefaultLines(t *testing.T) {
	f := newFixture(t)

	h, err := f.reg.BindNew("sword", leaves.Item, "modA")
	require.NoError(t, err)
	assert.Equal(t, Entry{Kind: leaves.Item, NamedID: "sword", GameID: 2, CreatorID: "modA", CurrentOwnerID: "modA"}, h.Entry())

	rec, err := h.Record(leaves.TableItemData)
	require.NoError(t, err)
	assert.Equal(t, "0@@SingleAlly", rec.Serialize())

	// The new line is written for the lowest language and read through it
	// for every other one.
	owner, ok := f.items.Owner(1, 2)
	require.True(t, ok)
	assert.Equal(t, 0, owner)
	rec, err = h.LocalizedRecord(leaves.TableItems, 1)
	require.NoError(t, err)
	assert.Equal(t, leaves.NoName, mustText(t, rec, "name"))

	next, err := f.reg.BindNew("shield", leaves.Item, "modB")
	require.NoError(t, err)
	assert.Equal(t, 3, next.Entry().GameID)
	assert.Empty(t, f.events.Events())
}

func TestBindNewValidatesNamedID(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"", " sword", "sword ", "7th", "-x", "+x", "a,b"} {
		_, err := f.reg.BindNew(name, leaves.Item, "modA")
		assert.ErrorIs(t, err, ErrInvalidNamedID, "%q", name)
	}
	assert.Equal(t, 2, f.itemData.Len())

	for _, name := range []string{"sword", "Sword_2", "modA:sword"} {
		assert.NoError(t, ValidateNamedID(name), name)
	}
}

func TestBindNewUnknownKind(t *testing.T) {
	f := newFixture(t)
	_, err := f.reg.BindNew("x", "Vehicle", "modA")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestBindNewLeavesTablesAloneWhenOneIsReadOnly(t *testing.T) {
	reg := New(WithSink(&Collector{}))
	data := table.Open(leaves.TableItemData, leaves.ItemData, itemData, true)
	text := table.OpenLocalized(leaves.TableItems, leaves.ItemText, map[int]string{0: itemsEN}, false)
	item, _ := leaves.Lookup(leaves.Item)
	reg.RegisterKind(item, Tables{
		Main:      map[string]*table.Table{leaves.TableItemData: data},
		Localized: map[string]*table.Localized{leaves.TableItems: text},
	})

	_, err := reg.BindNew("sword", leaves.Item, "modA")
	assert.ErrorIs(t, err, table.ErrReadOnly)
	assert.Equal(t, 2, data.Len())
	assert.False(t, data.Touched())
	_, ok := reg.Lookup(leaves.Item, ByName("sword"))
	assert.False(t, ok)
}

func TestBindExisting(t *testing.T) {
	f := newFixture(t)

	t.Run("by name", func(t *testing.T) {
		h, err := f.reg.BindExisting(ByName("HoneyDrop"), leaves.Item, "modA")
		require.NoError(t, err)
		assert.Equal(t, 1, h.Entry().GameID)
		assert.Equal(t, BaseCreator, h.Entry().CreatorID)
	})

	t.Run("by game id", func(t *testing.T) {
		h, err := f.reg.BindExisting(ByGameID(0), leaves.Item, "modA")
		require.NoError(t, err)
		assert.Equal(t, "CrunchyLeaf", h.Entry().NamedID)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := f.reg.BindExisting(ByName("Nope"), leaves.Item, "modA")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = f.reg.BindExisting(ByGameID(9), leaves.Item, "modA")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMutationsOverrideAndEmitProvenance(t *testing.T) {
	f := newFixture(t)

	h, err := f.reg.BindExisting(ByName("CrunchyLeaf"), leaves.Item, "modA")
	require.NoError(t, err)

	require.NoError(t, h.Set(leaves.TableItemData, func(r *codec.Record) error {
		return r.SetInt("buying_price", 45)
	}))
	line, err := f.itemData.Line(0)
	require.NoError(t, err)
	assert.Equal(t, "45@HPRecover,5@SingleAlly", line)
	assert.Equal(t, 2, f.itemData.Len())

	require.NoError(t, h.SetLocalized(leaves.TableItems, 1, func(r *codec.Record) error {
		return r.SetText("name", "Kurispi")
	}))

	got, _ := f.reg.Lookup(leaves.Item, ByGameID(0))
	assert.Equal(t, "modA", got.CurrentOwnerID)
	assert.Equal(t, []ProvenanceEvent{
		{OwnerID: "modA", Kind: leaves.Item, NamedID: "CrunchyLeaf", GameID: 0, CreatorID: BaseCreator, Operation: "Set ItemData"},
		{OwnerID: "modA", Kind: leaves.Item, NamedID: "CrunchyLeaf", GameID: 0, CreatorID: BaseCreator, Operation: "SetLocalized Items[1]"},
	}, f.events.Events())
}

func TestCreatorMutationsAreNotProvenance(t *testing.T) {
	f := newFixture(t)

	h, err := f.reg.BindNew("sword", leaves.Item, "modA")
	require.NoError(t, err)
	require.NoError(t, h.SetLocalized(leaves.TableItems, 0, func(r *codec.Record) error {
		return r.SetText("name", "Sword")
	}))
	assert.Empty(t, f.events.Events())

	// Another bud takes over, then the creator takes it back.
	other, err := f.reg.BindExisting(ByName("sword"), leaves.Item, "modB")
	require.NoError(t, err)
	require.NoError(t, other.Set(leaves.TableItemData, func(r *codec.Record) error {
		return r.SetInt("buying_price", 99)
	}))
	require.NoError(t, h.Set(leaves.TableItemData, func(r *codec.Record) error {
		return r.SetInt("buying_price", 10)
	}))

	events := f.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "modB", events[0].OwnerID)
	assert.Equal(t, "modA", h.Entry().CurrentOwnerID)
}

func TestFailedMutationLeavesTableAlone(t *testing.T) {
	f := newFixture(t)
	h, err := f.reg.BindExisting(ByGameID(1), leaves.Item, "modA")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = h.Set(leaves.TableItemData, func(r *codec.Record) error {
		_ = r.SetInt("buying_price", 1)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, f.itemData.Touched())
	assert.Equal(t, BaseCreator, h.Entry().CurrentOwnerID)

	err = h.Set("ItemDatum", func(*codec.Record) error { return nil })
	assert.ErrorIs(t, err, ErrUnknownTable)
	err = h.SetLocalized(leaves.TableItems, 5, func(*codec.Record) error { return nil })
	assert.ErrorIs(t, err, table.ErrUnknownLanguage)
}

func TestAppendToOrder(t *testing.T) {
	f := newFixture(t)

	h, err := f.reg.BindNew("Rock_Hard", leaves.Medal, "modA")
	require.NoError(t, err)
	require.NoError(t, h.AppendToOrder())
	assert.Equal(t, []int{0, 1}, f.order.Order())
	assert.ErrorIs(t, h.AppendToOrder(), table.ErrDuplicateOrder)

	item, err := f.reg.BindExisting(ByGameID(0), leaves.Item, "modA")
	require.NoError(t, err)
	assert.ErrorIs(t, item.AppendToOrder(), ErrUnknownTable)
}

func TestRegisterKindTwicePanics(t *testing.T) {
	reg := New()
	item, _ := leaves.Lookup(leaves.Item)
	reg.RegisterKind(item, Tables{})
	assert.PanicsWithValue(t, "content kind with name 'Item' already registered", func() {
		reg.RegisterKind(item, Tables{})
	})
}

func TestValidate(t *testing.T) {
	reg := New()
	item, _ := leaves.Lookup(leaves.Item)
	reg.RegisterKind(item, Tables{
		Main: map[string]*table.Table{leaves.TableItemData: table.Open(leaves.TableItemData, leaves.ItemData, itemData, true)},
	})
	medal, _ := leaves.Lookup(leaves.Medal)
	reg.RegisterKind(medal, Tables{
		Main:      map[string]*table.Table{leaves.TableBadgeData: table.Open(leaves.TableBadgeData, leaves.ItemData, "", true)},
		Localized: map[string]*table.Localized{leaves.TableBadgeName: table.OpenLocalized(leaves.TableBadgeName, leaves.MedalText, map[int]string{0: badgeEN}, true)},
	})

	err := reg.Validate()
	require.Error(t, err)
	assert.Equal(t, "registry validation failed:\n"+
		"- kind 'Item': localized table 'Items' was not provided\n"+
		"- kind 'Medal': table 'BadgeData' holds ItemData records, want MedalData\n"+
		"- kind 'Medal': order table 'BadgeOrder' was not provided", err.Error())
}

func TestSeed(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.reg.Seed(leaves.Item, []string{"a", "b", "c"}), ErrNotFound)
	assert.ErrorIs(t, f.reg.Seed(leaves.Item, []string{"", "CrunchyLeaf"}), ErrDuplicateNamedID)
	assert.ErrorIs(t, f.reg.Seed("Vehicle", nil), ErrUnknownKind)

	require.NoError(t, f.reg.Seed(leaves.Item, []string{"Leaf"}))
	_, ok := f.reg.Lookup(leaves.Item, ByName("CrunchyLeaf"))
	assert.False(t, ok)
	got, ok := f.reg.Lookup(leaves.Item, ByName("Leaf"))
	require.True(t, ok)
	assert.Equal(t, 0, got.GameID)
}

func TestEntriesAndKinds(t *testing.T) {
	f := newFixture(t)
	_, err := f.reg.BindNew("sword", leaves.Item, "modA")
	require.NoError(t, err)

	assert.Equal(t, []string{leaves.Item, leaves.Medal}, f.reg.Kinds())
	entries := f.reg.Entries(leaves.Item)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"CrunchyLeaf", "HoneyDrop", "sword"}, []string{entries[0].NamedID, entries[1].NamedID, entries[2].NamedID})
	assert.Nil(t, f.reg.Entries("Vehicle"))

	kind, ok := f.reg.Kind(leaves.Medal)
	require.True(t, ok)
	assert.Equal(t, leaves.TableBadgeOrder, kind.Order)
}

func TestNonEnumerableKindCannotBind(t *testing.T) {
	reg := New()
	reg.RegisterKind(leaves.Kind{Name: "Flag", Domain: idalloc.Domain{Name: "Flag"}}, Tables{})
	_, err := reg.BindNew("x", "Flag", "modA")
	assert.ErrorIs(t, err, idalloc.ErrDomain)
}

func mustText(t *testing.T, rec *codec.Record, field string) string {
	t.Helper()
	v, err := rec.Text(field)
	require.NoError(t, err)
	return v
}
