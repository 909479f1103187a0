package api_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/rootloader/api"
	"github.com/vk/rootloader/internal/assets"
	"github.com/vk/rootloader/internal/codec"
	"github.com/vk/rootloader/internal/inmemorystore"
	"github.com/vk/rootloader/internal/leaves"
	"github.com/vk/rootloader/internal/registry"
	"github.com/vk/rootloader/internal/session"
	"github.com/vk/rootloader/internal/table"
	"github.com/vk/rootloader/internal/testutil"
)

func setup(t *testing.T) (*session.Session, *registry.Collector) {
	t.Helper()
	events := &registry.Collector{}
	s, err := session.Open(context.Background(), assets.FromFS(testutil.BaselineFS()), registry.WithSink(events))
	require.NoError(t, err)
	return s, events
}

func flush(t *testing.T, s *session.Session) *inmemorystore.Store {
	t.Helper()
	out := inmemorystore.New()
	_, err := s.Flush(context.Background(), out)
	require.NoError(t, err)
	return out
}

func TestRegisterItem(t *testing.T) {
	s, _ := setup(t)
	v := api.New("swords", s.Registry(), nil)

	sword, err := v.RegisterItem("Sword")
	require.NoError(t, err)
	assert.Equal(t, 2, sword.GameID())
	assert.Equal(t, "Sword", sword.NamedID())
	assert.Equal(t, "swords", sword.CreatorID())
	assert.Equal(t, api.Item, sword.Kind())

	require.NoError(t, sword.SetBuyingPrice(120))
	require.NoError(t, sword.SetTarget("SingleEnemy"))
	require.NoError(t, sword.AddEffect("HPRecover", 4))
	require.NoError(t, sword.AddEffect("TPRecover", 1))
	require.NoError(t, sword.SetName(0, "Sword"))
	require.NoError(t, sword.SetDescription(0, "Sharp."))
	require.NoError(t, sword.SetName(1, "Tsurugi"))
	require.NoError(t, sword.SetPrepender(1, "a"))

	name, err := sword.GetLocalized(leaves.TableItems, 1, "name")
	require.NoError(t, err)
	assert.Equal(t, "Tsurugi", name)

	out := flush(t, s)
	blob, _ := out.Table(leaves.TableItemData)
	assert.Equal(t, "30@HPRecover,5@SingleAlly\n12@TPRecover,2@SingleAlly\n120@HPRecover,4;TPRecover,1@SingleEnemy\n", blob)
	blob, _ = out.Localized(0, leaves.TableItems)
	assert.Contains(t, blob, "\nSword@@Sharp.\n")
	blob, _ = out.Localized(1, leaves.TableItems)
	assert.Contains(t, blob, "\nTsurugi@@Sharp.@a\n")
}

func TestRegisterTwiceFails(t *testing.T) {
	s, _ := setup(t)
	a := api.New("modA", s.Registry(), nil)
	b := api.New("modB", s.Registry(), nil)

	first, err := a.RegisterItem("sword")
	require.NoError(t, err)
	_, err = b.RegisterItem("sword")
	assert.ErrorIs(t, err, registry.ErrDuplicateNamedID)

	again, err := b.RequestItem(api.ByName("sword"))
	require.NoError(t, err)
	assert.Equal(t, first.GameID(), again.GameID())
}

func TestRequestOverridesBaseContent(t *testing.T) {
	s, events := setup(t)
	v := api.New("rebalance", s.Registry(), nil)

	leaf, err := v.RequestItem(api.ByName("CrunchyLeaf"))
	require.NoError(t, err)
	require.NoError(t, leaf.ClearEffects())
	require.NoError(t, leaf.AddEffect("HPRecover", 6))

	hp, err := v.RequestMedal(api.ByGameID(0))
	require.NoError(t, err)
	require.NoError(t, hp.SetMPCost(2))

	out := flush(t, s)
	blob, _ := out.Table(leaves.TableItemData)
	assert.Equal(t, "30@HPRecover,6@SingleAlly\n12@TPRecover,2@SingleAlly\n", blob)

	got := events.Events()
	require.Len(t, got, 3)
	for _, ev := range got {
		assert.Equal(t, "rebalance", ev.OwnerID)
		assert.Equal(t, registry.BaseCreator, ev.CreatorID)
	}
	assert.Equal(t, "HPPlus", got[2].NamedID)

	_, err = v.RequestItem(api.ByName("Nope"))
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestRegisterOrderedKindsAppendToOrder(t *testing.T) {
	s, _ := setup(t)
	v := api.New("cards", s.Registry(), nil)

	medal, err := v.RegisterMedal("DefensePlus")
	require.NoError(t, err)
	require.NoError(t, medal.SetPartyEquip(true))
	require.NoError(t, medal.AddEffect("DefPlus", 1))
	require.NoError(t, medal.SetBuyingPrice(80))
	require.NoError(t, medal.SetCrystalPrice(4))
	require.NoError(t, medal.SetSpriteIndex(40))
	require.NoError(t, medal.SetName(0, "Defense Plus"))
	require.NoError(t, medal.SetDescription(0, "Raises defense by 1."))

	card, err := v.RegisterSpyCard("Wasp")
	require.NoError(t, err)
	require.NoError(t, card.SetTPCost(3))
	require.NoError(t, card.SetAttack(2))
	require.NoError(t, card.SetEnemy(20))
	require.NoError(t, card.SetType(1))
	require.NoError(t, card.AddEffect(4, 1, 0))
	require.NoError(t, card.AddTribe(2))
	require.NoError(t, card.AddTribe(7))
	require.NoError(t, card.SetDescription(0, "Stings."))
	require.NoError(t, card.SetNameSize(0, 0.9))

	out := flush(t, s)
	blob, _ := out.Table(leaves.TableBadgeOrder)
	assert.Equal(t, "1\n0\n2\n", blob)
	blob, _ = out.Table(leaves.TableCardOrder)
	assert.Equal(t, "0\n1\n2\n", blob)
	blob, _ = out.Table(leaves.TableBadgeData)
	assert.Contains(t, blob, "\n0@True@DefPlus,1@80@4@40\n")
	blob, _ = out.Table(leaves.TableSpyCardData)
	assert.Contains(t, blob, "\n3,2,20,1,1,4#1#0,2@7\n")
	blob, _ = out.Localized(0, leaves.TableCardText)
	assert.Contains(t, blob, "\nStings.@0.9\n")
}

func TestRegisterLeavesNothingBehindWhenOrderIsFull(t *testing.T) {
	fsys := testutil.BaselineFS()
	// The next medal id is already listed.
	fsys["Data/BadgeOrder.txt"] = &fstest.MapFile{Data: []byte("1\n0\n2\n")}
	s, err := session.Open(context.Background(), assets.FromFS(fsys))
	require.NoError(t, err)
	v := api.New("medals", s.Registry(), nil)

	_, err = v.RegisterMedal("DefensePlus")
	require.ErrorIs(t, err, table.ErrDuplicateOrder)

	_, err = v.RequestMedal(api.ByName("DefensePlus"))
	assert.ErrorIs(t, err, registry.ErrNotFound)
	assert.Len(t, v.Entries(api.Medal), 2)

	out := flush(t, s)
	_, written := out.Table(leaves.TableBadgeData)
	assert.False(t, written)
}

func TestRecipeAndRecord(t *testing.T) {
	s, _ := setup(t)
	v := api.New("kitchen", s.Registry(), nil)

	recipe, err := v.RegisterRecipe("LeafSalad")
	require.NoError(t, err)
	require.NoError(t, recipe.SetIngredients(0, -1))
	require.NoError(t, recipe.SetResult(1))

	record, err := v.RegisterRecord("Cookbook")
	require.NoError(t, err)
	require.NoError(t, record.SetSpriteIndex(30))
	require.NoError(t, record.SetName(0, "Cookbook"))
	require.NoError(t, record.SetDescription(0, "Recipes."))

	out := flush(t, s)
	blob, _ := out.Table(leaves.TableRecipeData)
	assert.Equal(t, "0,-1,1\n0,1,1\n0,-1,1\n", blob)
	blob, _ = out.Table(leaves.TableRecordData)
	assert.Equal(t, "0,22\n1,23\n0,30\n", blob)
	blob, _ = out.Localized(0, leaves.TableRecords)
	assert.Contains(t, blob, "\nCookbook@Recipes.\n")
}

func TestGenericContent(t *testing.T) {
	s, _ := setup(t)
	v := api.New("generic", s.Registry(), nil)

	skill, err := v.Register(api.Skill, "Slam")
	require.NoError(t, err)
	require.NoError(t, skill.Set(leaves.TableSkillData, "cost", 3))
	require.NoError(t, skill.Set(leaves.TableSkillData, "usable_by_beetle", true))
	require.NoError(t, skill.SetLocalized(leaves.TableSkills, 0, "name", "Slam"))

	cost, err := skill.Get(leaves.TableSkillData, "cost")
	require.NoError(t, err)
	assert.Equal(t, "3", cost)

	err = skill.Set(leaves.TableSkillData, "cost", "three")
	assert.ErrorIs(t, err, codec.ErrFieldValue)
	err = skill.Set(leaves.TableSkillData, "cost", 1.5)
	assert.ErrorIs(t, err, codec.ErrFieldValue)
	err = skill.Set(leaves.TableItemData, "cost", 1)
	assert.ErrorIs(t, err, registry.ErrUnknownTable)

	_, err = v.Register("Vehicle", "Cart")
	assert.ErrorIs(t, err, registry.ErrUnknownKind)

	music, err := v.Request(api.Music, api.ByGameID(1))
	require.NoError(t, err)
	require.NoError(t, music.SetLocalized(leaves.TableMusic, 0, "title", "Cave Theme (Remix)"))
	title, err := music.GetLocalized(leaves.TableMusic, 0, "title")
	require.NoError(t, err)
	assert.Equal(t, "Cave Theme (Remix)", title)
}

func TestSetFieldsIsAtomic(t *testing.T) {
	s, _ := setup(t)
	v := api.New("bulk", s.Registry(), nil)

	leaf, err := v.RegisterItem("BulkLeaf")
	require.NoError(t, err)

	err = leaf.SetFields(leaves.TableItemData, map[string]any{
		"buying_price": 30,
		"target":       "AllAlly",
	})
	require.NoError(t, err)

	err = leaf.SetFields(leaves.TableItemData, map[string]any{
		"buying_price": 99,
		"target":       "All@Ally",
	})
	require.Error(t, err)
	price, err := leaf.Get(leaves.TableItemData, "buying_price")
	require.NoError(t, err)
	assert.Equal(t, "30", price)

	require.NoError(t, leaf.SetLocalizedFields(leaves.TableItems, 0, map[string]any{
		"name":        "Bulk Leaf",
		"description": "Lots of it.",
	}))
	name, err := leaf.GetLocalized(leaves.TableItems, 0, "name")
	require.NoError(t, err)
	assert.Equal(t, "Bulk Leaf", name)
}
