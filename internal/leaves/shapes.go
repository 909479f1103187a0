package leaves

import (
	"slices"

	"github.com/vk/rootloader/internal/codec"
)

// Placeholder texts the host shows for content nobody has named yet.
const (
	NoName        = "<NO NAME>"
	NoDescription = "<NO DESCRIPTION>"
)

// Items.
var (
	ItemUse = codec.NewShape("ItemUse", ",",
		codec.Enum("use_type").WithDefault("HPRecover"),
		codec.Int("value"),
	)
	ItemData = codec.NewShape("ItemData", "@",
		codec.Int("buying_price"),
		codec.List("effects", ";", codec.Sub(ItemUse)),
		codec.Enum("target").WithDefault("SingleAlly"),
	)
	ItemText = codec.NewShape("ItemLanguageData", "@",
		codec.String("name").WithDefault(NoName),
		codec.String("unused_description"),
		codec.String("description").WithDefault(NoDescription),
		codec.String("prepender").AsOptional(),
	)
)

// Medals. The host calls them badges in its table names.
var (
	MedalEffect = codec.NewShape("MedalEffect", ",",
		codec.Enum("effect").WithDefault("HPPlus"),
		codec.Int("value"),
	)
	MedalData = codec.NewShape("MedalData", "@",
		codec.Int("mp_cost"),
		codec.Bool("party_equip"),
		codec.List("effects", ";", codec.Sub(MedalEffect)),
		codec.Int("buying_price"),
		codec.Int("crystal_price"),
		codec.Int("sprite_index").WithDefault("-1"),
	)
	MedalText = codec.NewShape("MedalLanguageData", "@",
		codec.String("name").WithDefault(NoName),
		codec.String("description").WithDefault(NoDescription),
		codec.String("prepender"),
	)
)

// Spy cards.
var (
	SpyCardEffect = codec.NewShape("SpyCardEffect", "#",
		codec.Int("effect"),
		codec.Int("first_value"),
		codec.Int("second_value"),
	)
	SpyCardData = codec.NewShape("SpyCardData", ",",
		codec.Int("tp_cost"),
		codec.Int("attack"),
		codec.Int("enemy_id"),
		codec.Float("unused_name_size").WithDefault("1"),
		codec.Int("type"),
		codec.List("effects", "@", codec.Sub(SpyCardEffect)),
		codec.List("tribes", "@", codec.Int("tribe")),
	)
	SpyCardText = codec.NewShape("SpyCardLanguageData", "@",
		codec.String("description").WithDefault(NoDescription),
		codec.Float("name_size").WithDefault("1"),
	)
)

// RecipeData is one cooking recipe. A second ingredient of -1 means the
// recipe takes a single item.
var RecipeData = codec.NewShape("RecipeData", ",",
	codec.Int("first_item"),
	codec.Int("second_item").WithDefault("-1"),
	codec.Int("result_item"),
)

// Lore records and discoveries share one layout: the entry's own id and the
// portrait sprite shown next to it.
var (
	RecordData = codec.NewShape("RecordData", ",",
		codec.Int("entry_id"),
		codec.Int("sprite_index"),
	)
	RecordText = codec.NewShape("RecordLanguageData", "@",
		codec.String("name").WithDefault(NoName),
		codec.String("description").WithDefault(NoDescription),
	)
	DiscoveryData = codec.NewShape("DiscoveryData", ",",
		codec.Int("entry_id"),
		codec.Int("sprite_index"),
	)
	DiscoveryText = codec.NewShape("DiscoveryLanguageData", "@",
		codec.String("name").WithDefault(NoName),
		codec.String("description").WithDefault(NoDescription),
	)
)

// Board quests.
var (
	QuestData = codec.NewShape("QuestData", "@",
		codec.Int("taken_flag"),
		codec.Int("icon_sprite_index"),
		codec.Int("difficulty"),
	)
	QuestText = codec.NewShape("QuestLanguageData", "@",
		codec.String("name").WithDefault(NoName),
		codec.String("description").WithDefault(NoDescription),
		codec.String("sender"),
	)
)

// Skills.
var (
	SkillData = codec.NewShape("SkillData", "@",
		codec.Int("cost"),
		codec.Enum("target").WithDefault("SingleEnemy"),
		codec.Bool("usable_by_bee"),
		codec.Bool("usable_by_beetle"),
		codec.Bool("usable_by_moth"),
		codec.Bool("grounded_only"),
		codec.Bool("front_only"),
		codec.Int("action_command"),
		codec.Bool("alive_only"),
		codec.Bool("exclude_user"),
		codec.Bool("fainted_only"),
	)
	SkillText = codec.NewShape("SkillLanguageData", "@",
		codec.String("name").WithDefault(NoName),
		codec.String("description").WithDefault(NoDescription),
	)
)

// MusicText holds a track title. Titles are free text, so the shape uses the
// line separator as its delimiter and always reads as a single field.
var MusicText = codec.NewShape("MusicLanguageData", "\n",
	codec.String("title").WithDefault(NoName),
)

// Enemies. Offsets and sizes are stored one component per field.
var (
	EnemyData = codec.NewShape("EnemyData", ",", slices.Concat(
		[]codec.Field{
			codec.Int("anim_id"),
			codec.Int("max_hp"),
			codec.Int("defense"),
			codec.Int("exp_reward"),
			codec.Int("berry_drop"),
		},
		floats("cursor_offset"),
		[]codec.Field{
			codec.Int("poison_resistance"),
			codec.Int("freeze_resistance"),
			codec.Int("numb_resistance"),
			codec.Int("sleep_resistance"),
			codec.Float("size"),
		},
		floats("freeze_size"),
		floats("freeze_offset"),
		[]codec.Field{
			codec.Enum("battle_position").WithDefault("Ground"),
			codec.Float("height"),
			codec.Float("bob_speed"),
			codec.Float("bob_range"),
			// Property count followed by one "{Name" per property and a
			// closing brace.
			codec.String("properties").WithDefault("0{"),
			codec.Float("weight"),
			codec.Int("base_enemy").WithDefault("-1"),
			codec.Int("death_event").WithDefault("-1"),
			codec.Int("turns_per_main_turn").WithDefault("1"),
			codec.Bool("cannot_be_taunted"),
			codec.Bool("cannot_fall"),
			codec.Bool("fixed_exp_scaling"),
			codec.Bool("ignores_exhaustion"),
			codec.Bool("stats_hidden"),
			codec.Int("death_type"),
			codec.List("hit_action_enemies", ";", codec.Int("enemy")).WithDefault("-1"),
			codec.Int("hard_attack_increase"),
			codec.Int("hard_hp_increase"),
			codec.Int("hard_defense_increase"),
			codec.Int("defending_defense_increase"),
		},
		floats("item_offset"),
		[]codec.Field{
			codec.Bool("battle_idle_base_state"),
			codec.Int("portrait_sprite_index").WithDefault("-1"),
			codec.Bool("cannot_be_spied"),
			codec.Int("fall_event").WithDefault("-1"),
			codec.Int("hit_action_trigger"),
			codec.Bool("acts_while_stunned"),
			codec.Float("frozen_size"),
		},
	)...)
	EnemyText = codec.NewShape("EnemyLanguageData", "@",
		codec.String("name").WithDefault(NoName),
		codec.List("biography", "{", codec.String("page")).WithDefault(NoDescription),
		codec.String("bee_spy"),
		codec.String("beetle_spy"),
		codec.String("moth_spy"),
	)
)

// TermacadePrizeData is one prize of the arcade shop. An availability of 1
// makes it a single purchase guarded by the bought flag.
var TermacadePrizeData = codec.NewShape("TermacadePrize", ",",
	codec.Int("prize_type"),
	codec.Int("item_or_medal"),
	codec.Int("token_cost"),
	codec.Int("availability"),
	codec.Int("bought_flag"),
)

// RankBonusData is the reward granted on reaching a team rank.
var RankBonusData = codec.NewShape("RankBonus", ",",
	codec.Int("rank"),
	codec.Int("bonus_type"),
	codec.Int("first_value"),
	codec.Int("second_value"),
	codec.Int("third_value"),
)

// AnimIDData holds the entity values of one animation id. Vectors are written
// as "(x, y, z)", so the record delimiter splits each into three fields
// that keep their parenthesis and spacing.
var AnimIDData = codec.NewShape("AnimIDData", ",", slices.Concat(
	[]codec.Field{codec.Float("shadow_size").WithDefault("1")},
	vector("start_scale", "1"),
	[]codec.Field{
		codec.Float("bleep_pitch").WithDefault("1"),
		codec.Int("bleep_id"),
		codec.Bool("model_entity"),
	},
	vector("model_scale", "0"),
	vector("model_offset", "0"),
	vector("freeze_size", "0"),
	vector("freeze_offset", "0"),
	vector("freeze_flip_offset", "0"),
	[]codec.Field{
		// Resource paths separated by '?', each prefixed by '$' when only
		// preloaded in battle and by '&' when it is a sprite.
		codec.List("preload", "?", codec.String("resource")),
		codec.Bool("shake_on_drop"),
		codec.Bool("dig_animation"),
		codec.Bool("keep_jump"),
		codec.Bool("no_freeze_when_falling"),
		codec.Bool("no_shadows"),
		codec.Int("walk_type"),
		codec.Int("unused_base_state"),
		codec.Int("unused_base_walk"),
		codec.Float("minimum_height"),
		codec.Float("unused_starting_height"),
		codec.Float("bob_speed"),
		codec.Float("bob_range"),
		codec.Bool("ice_animation"),
		codec.Bool("no_fly_animation"),
		codec.Bool("forces_shadow"),
		codec.Bool("object"),
	},
)...)

func floats(name string) []codec.Field {
	return []codec.Field{
		codec.Float(name + "_x"),
		codec.Float(name + "_y"),
		codec.Float(name + "_z"),
	}
}

func vector(name, value string) []codec.Field {
	return []codec.Field{
		codec.String(name + "_x").WithDefault("(" + value),
		codec.String(name + "_y").WithDefault(" " + value),
		codec.String(name + "_z").WithDefault(" " + value + ")"),
	}
}
