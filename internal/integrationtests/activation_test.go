package integrationtests

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/rootloader/api"
	"github.com/vk/rootloader/internal/activation"
	"github.com/vk/rootloader/internal/app"
	"github.com/vk/rootloader/internal/handlers"
	"github.com/vk/rootloader/internal/resolver"
	"github.com/vk/rootloader/internal/testutil"
	"github.com/vk/rootloader/modules/print"
)

const defensePlus = `
content "Medal" "DefensePlus" {
  table "BadgeData" {
    fields = { mp_cost = 2, party_equip = true, buying_price = 80 }
  }
  text "BadgeName" {
    language = lang.en
    fields   = { name = "Defense Plus", description = "Raises defense by 1." }
  }
}
`

// rebalance is a compiled-in bud overriding baseline content.
type rebalance struct{}

func (rebalance) Register(h *handlers.Handlers) {
	h.Register("Rebalance.dll", api.ExtensionFunc(func(_ context.Context, v *api.Venus) error {
		leaf, err := v.RequestItem(api.ByName("CrunchyLeaf"))
		if err != nil {
			return err
		}
		return leaf.SetBuyingPrice(40)
	}))
}

func TestFullPass(t *testing.T) {
	summary := &bytes.Buffer{}
	res := RunIntegrationTest(t, app.Config{}, map[string]string{
		"medals/manifest.json":    testutil.Manifest("example.medals", "Medals.dll"),
		"medals/content.hcl":      defensePlus,
		"rebalance/manifest.json": testutil.Manifest("example.rebalance", "Rebalance.dll", "example.medals"),
		"summary/manifest.json":   testutil.Manifest("example.summary", print.AssemblyIdentity, "?example.medals", "?example.rebalance"),
	}, rebalance{}, &print.Module{Out: summary})
	require.NoError(t, res.Err)

	assert.Equal(t, []string{"example.medals", "example.rebalance", "example.summary"}, res.Report.Order)
	assert.Equal(t, res.Report.Order, res.Report.Activated)
	assert.Empty(t, res.Report.Failed)
	assert.Empty(t, res.Report.Rejected)

	assert.Equal(t, "1@False@HPPlus,1@100@5@12\n3@True@@50@2@13\n2@True@@80@0@-1\n", res.Output(t, "Data/BadgeData.txt"))
	assert.Equal(t, "1\n0\n2\n", res.Output(t, "Data/BadgeOrder.txt"))
	assert.Contains(t, res.Output(t, "Data/Dialogues0/BadgeName.txt"), "\nDefense Plus@Raises defense by 1.@")
	assert.Equal(t, "40@HPRecover,5@SingleAlly\n12@TPRecover,2@SingleAlly\n", res.Output(t, "Data/ItemData.txt"))
	assert.Empty(t, res.Output(t, "Data/SkillData.txt"), "untouched tables are not written")

	require.Len(t, res.Report.Provenance, 1)
	assert.Equal(t, "example.rebalance", res.Report.Provenance[0].OwnerID)

	assert.Contains(t, summary.String(), "Medal = 3 (added 1, overridden 0)")
	assert.Contains(t, summary.String(), "Item = 2 (added 0, overridden 1)")
	assert.Contains(t, res.LogOutput, "Content modified by a bud other than its creator.")
}

func TestRejectionsAreReported(t *testing.T) {
	buds := map[string]string{
		"good/manifest.json":   testutil.Manifest("example.good", "Good.dll"),
		"good/content.hcl":     defensePlus,
		"axe/manifest.json":    testutil.Manifest("example.axe", "Axe.dll", "!example.good"),
		"a/manifest.json":      testutil.Manifest("example.a", "A.dll", "example.b"),
		"b/manifest.json":      testutil.Manifest("example.b", "B.dll", "example.a"),
		"orphan/manifest.json": testutil.Manifest("example.orphan", "Orphan.dll", "example.missing"),
		"broken/manifest.json": `{"id": "example.broken"`,
	}

	t.Run("lenient", func(t *testing.T) {
		res := RunIntegrationTest(t, app.Config{}, buds)
		require.NoError(t, res.Err)

		reasons := make(map[string]resolver.Reason)
		for _, r := range res.Report.Rejected {
			reasons[r.ID] = r.Reason
		}
		assert.Equal(t, map[string]resolver.Reason{
			"broken":         resolver.MalformedManifest,
			"example.good":   resolver.Incompatible,
			"example.axe":    resolver.Incompatible,
			"example.a":      resolver.CyclicDependency,
			"example.b":      resolver.CyclicDependency,
			"example.orphan": resolver.MissingHardDependency,
		}, reasons)
		assert.Empty(t, res.Report.Activated)
		assert.Empty(t, res.Output(t, "Data/BadgeData.txt"))
	})

	t.Run("strict", func(t *testing.T) {
		res := RunIntegrationTest(t, app.Config{Strict: true}, buds)
		require.ErrorIs(t, res.Err, activation.ErrRejected)
		assert.NotEmpty(t, res.Report.Rejected)
	})
}

func TestFailingBudDoesNotStopThePass(t *testing.T) {
	res := RunIntegrationTest(t, app.Config{}, map[string]string{
		"bad/manifest.json":    testutil.Manifest("example.bad", "Bad.dll"),
		"bad/content.hcl":      `content "Vehicle" "Cart" {}`,
		"medals/manifest.json": testutil.Manifest("example.medals", "Medals.dll"),
		"medals/content.hcl":   defensePlus,
		"none/manifest.json":   testutil.Manifest("example.none", "None.dll"),
	})
	require.NoError(t, res.Err)

	assert.Equal(t, []string{"example.medals"}, res.Report.Activated)
	require.Len(t, res.Report.Failed, 2)
	assert.Equal(t, "example.bad", res.Report.Failed[0].ID)
	assert.Contains(t, res.Report.Failed[0].Error, "Vehicle")
	assert.Equal(t, "example.none", res.Report.Failed[1].ID)
	assert.Equal(t, "1\n0\n2\n", res.Output(t, "Data/BadgeOrder.txt"))
}

func TestDryRunWritesNothing(t *testing.T) {
	res := RunIntegrationTest(t, app.Config{DryRun: true}, map[string]string{
		"medals/manifest.json": testutil.Manifest("example.medals", "Medals.dll"),
		"medals/content.hcl":   defensePlus,
	})
	require.NoError(t, res.Err)
	assert.Equal(t, []string{"example.medals"}, res.Report.Activated)
	assert.NotEmpty(t, res.Report.Outputs)
	assert.Empty(t, res.Output(t, "Data/BadgeData.txt"))
}
