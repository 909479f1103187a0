package leaves

import (
	"github.com/vk/rootloader/internal/codec"
	"github.com/vk/rootloader/internal/idalloc"
)

// Kind names.
const (
	Item           = "Item"
	Medal          = "Medal"
	SpyCard        = "SpyCard"
	Recipe         = "Recipe"
	Record         = "Record"
	Discovery      = "Discovery"
	Quest          = "Quest"
	Skill          = "Skill"
	Music          = "Music"
	Enemy          = "Enemy"
	TermacadePrize = "TermacadePrize"
	RankBonus      = "RankBonus"
	AnimID         = "AnimID"
)

// Table names, as found under the host's Data directory.
const (
	TableItemData      = "ItemData"
	TableItems         = "Items"
	TableBadgeData     = "BadgeData"
	TableBadgeName     = "BadgeName"
	TableBadgeOrder    = "BadgeOrder"
	TableSpyCardData   = "SpyCardData"
	TableCardText      = "CardText"
	TableCardOrder     = "CardOrder"
	TableRecipeData    = "RecipeData"
	TableRecordData    = "RecordData"
	TableRecords       = "Records"
	TableDiscoveryData = "DiscoveryData"
	TableDiscoveries   = "Discoveries"
	TableBoardData     = "BoardData"
	TableBoardQuests   = "BoardQuests"
	TableSkillData     = "SkillData"
	TableSkills        = "Skills"
	TableMusic         = "Music"
	TableEnemyData     = "EnemyData"
	TableEnemyTattle   = "EnemyTattle"
	TableTattleList    = "TattleList"
	TableTermacade     = "Termacade"
	TableRankBonus     = "RankBonus"
	TableEntityValues  = "EntityValues"
)

// TableSpec binds a table name to the shape of its lines.
type TableSpec struct {
	Name  string
	Shape *codec.Shape
}

// Kind declares one content kind: the identifier domain its game ids come
// from and the tables that hold one line per game id.
type Kind struct {
	Name   string
	Domain idalloc.Domain
	// Tables are the non-localized tables of the kind.
	Tables []TableSpec
	// Localized tables live once per language under Dialogues<lang>.
	Localized []TableSpec
	// Order names the table listing game ids in display order, if any.
	Order string
}

// Table returns the spec of the named table, localized or not.
func (k Kind) Table(name string) (spec TableSpec, localized bool, ok bool) {
	for _, t := range k.Tables {
		if t.Name == name {
			return t, false, true
		}
	}
	for _, t := range k.Localized {
		if t.Name == name {
			return t, true, true
		}
	}
	return TableSpec{}, false, false
}

func enumerable(name string) idalloc.Domain {
	return idalloc.Domain{Name: name, Enumerable: true}
}

// Catalog returns every content kind the loader knows how to patch.
func Catalog() []Kind {
	return []Kind{
		{
			Name:      Item,
			Domain:    enumerable(Item),
			Tables:    []TableSpec{{TableItemData, ItemData}},
			Localized: []TableSpec{{TableItems, ItemText}},
		},
		{
			Name:      Medal,
			Domain:    enumerable(Medal),
			Tables:    []TableSpec{{TableBadgeData, MedalData}},
			Localized: []TableSpec{{TableBadgeName, MedalText}},
			Order:     TableBadgeOrder,
		},
		{
			Name:      SpyCard,
			Domain:    enumerable(SpyCard),
			Tables:    []TableSpec{{TableSpyCardData, SpyCardData}},
			Localized: []TableSpec{{TableCardText, SpyCardText}},
			Order:     TableCardOrder,
		},
		{
			Name:   Recipe,
			Domain: enumerable(Recipe),
			Tables: []TableSpec{{TableRecipeData, RecipeData}},
		},
		{
			Name:      Record,
			Domain:    enumerable(Record),
			Tables:    []TableSpec{{TableRecordData, RecordData}},
			Localized: []TableSpec{{TableRecords, RecordText}},
		},
		{
			Name:      Discovery,
			Domain:    enumerable(Discovery),
			Tables:    []TableSpec{{TableDiscoveryData, DiscoveryData}},
			Localized: []TableSpec{{TableDiscoveries, DiscoveryText}},
		},
		{
			Name:      Quest,
			Domain:    enumerable(Quest),
			Tables:    []TableSpec{{TableBoardData, QuestData}},
			Localized: []TableSpec{{TableBoardQuests, QuestText}},
		},
		{
			Name:      Skill,
			Domain:    enumerable(Skill),
			Tables:    []TableSpec{{TableSkillData, SkillData}},
			Localized: []TableSpec{{TableSkills, SkillText}},
		},
		{
			Name:      Music,
			Domain:    enumerable(Music),
			Localized: []TableSpec{{TableMusic, MusicText}},
		},
		{
			Name:      Enemy,
			Domain:    enumerable(Enemy),
			Tables:    []TableSpec{{TableEnemyData, EnemyData}},
			Localized: []TableSpec{{TableEnemyTattle, EnemyText}},
			Order:     TableTattleList,
		},
		{
			Name:   TermacadePrize,
			Domain: enumerable(TermacadePrize),
			Tables: []TableSpec{{TableTermacade, TermacadePrizeData}},
		},
		{
			Name:   RankBonus,
			Domain: enumerable(RankBonus),
			Tables: []TableSpec{{TableRankBonus, RankBonusData}},
		},
		{
			Name:   AnimID,
			Domain: enumerable(AnimID),
			Tables: []TableSpec{{TableEntityValues, AnimIDData}},
		},
	}
}

// Lookup finds a kind of the catalog by name.
func Lookup(name string) (Kind, bool) {
	for _, k := range Catalog() {
		if k.Name == name {
			return k, true
		}
	}
	return Kind{}, false
}
