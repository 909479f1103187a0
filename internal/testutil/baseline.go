package testutil

import (
	"maps"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

// Baseline is a small host data root with two lines of every content kind
// that tests can count on. Language 0 has every localized table; language 1
// only translates items and medals.
func Baseline() map[string]string {
	return map[string]string{
		"Data/ItemData.txt":               "30@HPRecover,5@SingleAlly\n12@TPRecover,2@SingleAlly\n",
		"Data/Dialogues0/Items.txt":       "Crunchy Leaf@@Heals 3 HP.\nHoney Drop@@Heals 2 TP.\n",
		"Data/Dialogues1/Items.txt":       "Kuranchi@@HP 3.\nHachimitsu@@TP 2.\n",
		"Data/BadgeData.txt":              "1@False@HPPlus,1@100@5@12\n3@True@@50@2@13\n",
		"Data/Dialogues0/BadgeName.txt":   "HP Plus@Raises HP by 1.@\nPower Plus@Raises attack by 1.@\n",
		"Data/Dialogues1/BadgeName.txt":   "HP Purasu@HP +1.@\nPawa Purasu@Kogeki +1.@\n",
		"Data/BadgeOrder.txt":             "1\n0\n",
		"Data/SpyCardData.txt":            "1,1,0,1,0,,\n2,3,14,1,0,4#1#0,3@5\n",
		"Data/Dialogues0/CardText.txt":    "Deals 1 damage.@1\nDeals 3 damage.@0.85\n",
		"Data/CardOrder.txt":              "0\n1\n",
		"Data/RecipeData.txt":             "0,-1,1\n0,1,1\n",
		"Data/RecordData.txt":             "0,22\n1,23\n",
		"Data/Dialogues0/Records.txt":     "Old Tale@Once upon a time.\nNew Tale@Just now.\n",
		"Data/DiscoveryData.txt":          "0,3\n1,4\n",
		"Data/Dialogues0/Discoveries.txt": "Spring@A warm spring.\nCave@A dark cave.\n",
		"Data/BoardData.txt":              "0@1@2\n0@2@1\n",
		"Data/Dialogues0/BoardQuests.txt": "Tidy Up@Collect 3 leaves.@Kabbu\nDelivery@Bring honey.@Vi\n",
		"Data/SkillData.txt":              "2@SingleEnemy@True@False@False@True@False@5@True@False@False\n0@AllParty@False@True@False@False@False@0@True@False@False\n",
		"Data/Dialogues0/Skills.txt":      "Needle Toss@Pierces.\nTaunt@Draws attacks.\n",
		"Data/Dialogues0/Music.txt":       "Lake Theme\nCave Theme\n",
		"Data/EnemyData.txt":              "5,10,0,12,3,0,1.5,0.1,0,0,0,0,1,1,1,1,0,0,0,Ground,0,0,0,2{Flying{Spiky{,1,-1,-1,1,False,False,False,False,False,0,-1,1,2,0,1,0,0.5,0,False,3,False,-1,0,False,1\n7,22,0,12,3,0,1.5,0.1,0,0,0,0,1,1,1,1,0,0,0,Flying,0,0,0,0{,1,-1,-1,1,False,False,False,False,False,0,0;1,1,2,0,1,0,0.5,0,False,4,False,-1,0,False,1\n",
		"Data/Dialogues0/EnemyTattle.txt": "Zombiant@It bites.{It never sleeps.@Bee line@Beetle line@Moth line\nSeedling@A sprout.@@@\n",
		"Data/TattleList.txt":             "1\n0\n",
		"Data/Termacade.txt":              "0,4,30,1,120\n1,0,50,0,0\n",
		"Data/RankBonus.txt":              "1,0,5,0,0\n2,1,1,0,0\n",
		"Data/EntityValues.txt":           "1,(1, 1, 1),1,0,False,(0, 0, 0),(0, 0, 0),(1, 1, 1),(0, 0, 0),(0, 0, 0),$&Sprites/Entities/ant?Prefabs/Ant,False,True,False,False,False,0,0,0,0,0,0,0,False,False,False,False\n0.8,(1, 1, 1),1,0,True,(0, 0, 0),(0, 0, 0),(1, 1, 1),(0, 0, 0),(0, 0, 0),,False,True,False,False,False,0,0,0,0,0,0,0,False,False,False,False\n",
		"Names/Item.txt":                  "CrunchyLeaf\nHoneyDrop\n",
		"Names/Medal.txt":                 "HPPlus\nPowerPlus\n",
	}
}

// BaselineFS returns Baseline as an in-memory file system.
func BaselineFS() fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, content := range Baseline() {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

// WriteFiles writes files, keyed by slash separated relative path, under
// root.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// DataRoot writes Baseline, overlaid with extra, to a temporary directory
// and returns its path.
func DataRoot(t *testing.T, extra map[string]string) string {
	t.Helper()
	files := Baseline()
	maps.Copy(files, extra)
	root := t.TempDir()
	WriteFiles(t, root, files)
	return root
}

// ReadFile returns the content of a file under root, failing the test if it
// cannot be read.
func ReadFile(t *testing.T, root, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(b)
}
