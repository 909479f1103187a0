package api

import (
	"github.com/vk/rootloader/internal/codec"
	"github.com/vk/rootloader/internal/leaves"
)

func (c *Content) setInt(table, field string, v int) error {
	return c.update(table, func(r *codec.Record) error { return r.SetInt(field, v) })
}

func (c *Content) setText(table, field, v string) error {
	return c.update(table, func(r *codec.Record) error { return r.SetText(field, v) })
}

func (c *Content) setLocalizedText(table string, lang int, field, v string) error {
	return c.h.SetLocalized(table, lang, func(r *codec.Record) error { return r.SetText(field, v) })
}

func (c *Content) clearList(table, list string) error {
	return c.update(table, func(r *codec.Record) error {
		if f, _ := r.Shape().Field(list); f.Elem != nil && f.Elem.Kind == codec.KindNested {
			return r.SetItems(list, nil)
		}
		return r.SetScalars(list, nil)
	})
}

// ItemHandle edits an item.
type ItemHandle struct{ *Content }

// SetBuyingPrice sets the shop price in berries.
func (h *ItemHandle) SetBuyingPrice(price int) error {
	return h.setInt(leaves.TableItemData, "buying_price", price)
}

// SetTarget sets who the item can be used on, e.g. SingleAlly or AllParty.
func (h *ItemHandle) SetTarget(target string) error {
	return h.setText(leaves.TableItemData, "target", target)
}

// AddEffect appends an effect such as HPRecover with its strength.
func (h *ItemHandle) AddEffect(use string, value int) error {
	return h.appendItem(leaves.TableItemData, "effects", map[string]any{"use_type": use, "value": value})
}

// ClearEffects removes every effect of the item.
func (h *ItemHandle) ClearEffects() error {
	return h.clearList(leaves.TableItemData, "effects")
}

// SetName sets the item name shown in the given language.
func (h *ItemHandle) SetName(lang int, name string) error {
	return h.setLocalizedText(leaves.TableItems, lang, "name", name)
}

// SetDescription sets the menu description in the given language.
func (h *ItemHandle) SetDescription(lang int, description string) error {
	return h.setLocalizedText(leaves.TableItems, lang, "description", description)
}

// SetPrepender sets the article shown before the name, where the language
// uses one.
func (h *ItemHandle) SetPrepender(lang int, prepender string) error {
	return h.setLocalizedText(leaves.TableItems, lang, "prepender", prepender)
}

// MedalHandle edits a medal.
type MedalHandle struct{ *Content }

// SetMPCost sets the medal points needed to equip the medal.
func (h *MedalHandle) SetMPCost(cost int) error {
	return h.setInt(leaves.TableBadgeData, "mp_cost", cost)
}

// SetPartyEquip makes the medal apply to the whole party.
func (h *MedalHandle) SetPartyEquip(party bool) error {
	return h.update(leaves.TableBadgeData, func(r *codec.Record) error { return r.SetBool("party_equip", party) })
}

// AddEffect appends an effect such as HPPlus with its strength.
func (h *MedalHandle) AddEffect(effect string, value int) error {
	return h.appendItem(leaves.TableBadgeData, "effects", map[string]any{"effect": effect, "value": value})
}

// ClearEffects removes every effect of the medal.
func (h *MedalHandle) ClearEffects() error {
	return h.clearList(leaves.TableBadgeData, "effects")
}

// SetBuyingPrice sets the berry price.
func (h *MedalHandle) SetBuyingPrice(price int) error {
	return h.setInt(leaves.TableBadgeData, "buying_price", price)
}

// SetCrystalPrice sets the price in crystal berries.
func (h *MedalHandle) SetCrystalPrice(price int) error {
	return h.setInt(leaves.TableBadgeData, "crystal_price", price)
}

// SetSpriteIndex picks the medal icon.
func (h *MedalHandle) SetSpriteIndex(index int) error {
	return h.setInt(leaves.TableBadgeData, "sprite_index", index)
}

// SetName sets the medal name shown in the given language.
func (h *MedalHandle) SetName(lang int, name string) error {
	return h.setLocalizedText(leaves.TableBadgeName, lang, "name", name)
}

// SetDescription sets the medal description in the given language.
func (h *MedalHandle) SetDescription(lang int, description string) error {
	return h.setLocalizedText(leaves.TableBadgeName, lang, "description", description)
}

// SpyCardHandle edits a spy card.
type SpyCardHandle struct{ *Content }

// SetTPCost sets the card cost.
func (h *SpyCardHandle) SetTPCost(cost int) error {
	return h.setInt(leaves.TableSpyCardData, "tp_cost", cost)
}

// SetAttack sets the base attack of the card.
func (h *SpyCardHandle) SetAttack(attack int) error {
	return h.setInt(leaves.TableSpyCardData, "attack", attack)
}

// SetEnemy sets the game id of the enemy pictured on the card.
func (h *SpyCardHandle) SetEnemy(enemyID int) error {
	return h.setInt(leaves.TableSpyCardData, "enemy_id", enemyID)
}

// SetType sets the card type: attacker, effect, battle, miniboss or boss.
func (h *SpyCardHandle) SetType(cardType int) error {
	return h.setInt(leaves.TableSpyCardData, "type", cardType)
}

// AddEffect appends an effect id with its two values.
func (h *SpyCardHandle) AddEffect(effect, first, second int) error {
	return h.appendItem(leaves.TableSpyCardData, "effects", map[string]any{
		"effect":       effect,
		"first_value":  first,
		"second_value": second,
	})
}

// AddTribe appends a tribe id, keeping the existing ones.
func (h *SpyCardHandle) AddTribe(tribe int) error {
	return h.update(leaves.TableSpyCardData, func(r *codec.Record) error {
		tribes, err := r.Scalars("tribes")
		if err != nil {
			return err
		}
		return r.Assign("tribes", append(toAny(tribes), tribe))
	})
}

// SetDescription sets the card text in the given language.
func (h *SpyCardHandle) SetDescription(lang int, description string) error {
	return h.setLocalizedText(leaves.TableCardText, lang, "description", description)
}

// SetNameSize scales the card name so long names fit.
func (h *SpyCardHandle) SetNameSize(lang int, size float64) error {
	return h.h.SetLocalized(leaves.TableCardText, lang, func(r *codec.Record) error {
		return r.SetFloat("name_size", size)
	})
}

// RecipeHandle edits a cooking recipe. Ingredients and results are item
// game ids.
type RecipeHandle struct{ *Content }

// SetIngredients sets both ingredients; pass -1 as second for a single
// ingredient recipe.
func (h *RecipeHandle) SetIngredients(first, second int) error {
	return h.update(leaves.TableRecipeData, func(r *codec.Record) error {
		if err := r.SetInt("first_item", first); err != nil {
			return err
		}
		return r.SetInt("second_item", second)
	})
}

// SetResult sets the item the recipe cooks.
func (h *RecipeHandle) SetResult(item int) error {
	return h.setInt(leaves.TableRecipeData, "result_item", item)
}

// RecordHandle edits a lore record.
type RecordHandle struct{ *Content }

// SetSpriteIndex picks the record icon.
func (h *RecordHandle) SetSpriteIndex(index int) error {
	return h.setInt(leaves.TableRecordData, "sprite_index", index)
}

// SetName sets the record title in the given language.
func (h *RecordHandle) SetName(lang int, name string) error {
	return h.setLocalizedText(leaves.TableRecords, lang, "name", name)
}

// SetDescription sets the record text in the given language.
func (h *RecordHandle) SetDescription(lang int, description string) error {
	return h.setLocalizedText(leaves.TableRecords, lang, "description", description)
}

func toAny(raws []string) []any {
	out := make([]any, len(raws))
	for i, r := range raws {
		out[i] = r
	}
	return out
}
