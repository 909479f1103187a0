package activation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/rootloader/api"
	"github.com/vk/rootloader/internal/assets"
	"github.com/vk/rootloader/internal/handlers"
	"github.com/vk/rootloader/internal/inmemorystore"
	"github.com/vk/rootloader/internal/leaves"
	"github.com/vk/rootloader/internal/manifest"
	"github.com/vk/rootloader/internal/resolver"
	"github.com/vk/rootloader/internal/testutil"
)

func candidate(id string, deps ...string) manifest.Candidate {
	m := &manifest.Manifest{
		AssemblyIdentity: id + ".dll",
		ID:               id,
		DisplayName:      id,
		Version:          "1.0.0",
		Author:           "tests",
	}
	for _, d := range deps {
		m.Dependencies = append(m.Dependencies, manifest.Dependency{ID: d})
	}
	return manifest.Candidate{Dir: "/buds/" + id, Path: "/buds/" + id + "/manifest.json", Manifest: m}
}

// mapLoader serves extensions by bud id.
type mapLoader map[string]api.Extension

func (l mapLoader) Load(_ context.Context, a resolver.Activation) (api.Extension, error) {
	ext, ok := l[a.ID()]
	if !ok {
		return nil, ErrNoEntry
	}
	return ext, nil
}

func registerItem(namedID string) api.Extension {
	return api.ExtensionFunc(func(_ context.Context, v *api.Venus) error {
		item, err := v.RegisterItem(namedID)
		if err != nil {
			return err
		}
		return item.SetBuyingPrice(10)
	})
}

func options(loader Loader) (Options, *inmemorystore.Store) {
	out := inmemorystore.New()
	return Options{
		Loader: loader,
		Source: assets.FromFS(testutil.BaselineFS()),
		Sink:   out,
	}, out
}

func TestRun(t *testing.T) {
	var order []string
	track := func(id string, ext api.Extension) api.Extension {
		return api.ExtensionFunc(func(ctx context.Context, v *api.Venus) error {
			order = append(order, id)
			return ext.Activate(ctx, v)
		})
	}

	addon := api.ExtensionFunc(func(_ context.Context, v *api.Venus) error {
		sword, err := v.RequestItem(api.ByName("Sword"))
		if err != nil {
			return err
		}
		return sword.SetBuyingPrice(25)
	})
	broken := api.ExtensionFunc(func(context.Context, *api.Venus) error {
		return errors.New("boom")
	})
	panics := api.ExtensionFunc(func(context.Context, *api.Venus) error {
		panic("kaboom")
	})

	loader := mapLoader{
		"core":   track("core", registerItem("Sword")),
		"addon":  track("addon", addon),
		"broken": track("broken", broken),
		"panics": track("panics", panics),
	}
	opts, out := options(loader)

	report, err := Run(context.Background(), []manifest.Candidate{
		candidate("addon", "core"),
		candidate("core"),
		candidate("broken"),
		candidate("panics"),
		candidate("empty"),
		candidate("orphan", "missing"),
	}, opts)
	require.NoError(t, err)

	assert.NotEmpty(t, report.SessionID)
	assert.Equal(t, []string{"broken", "core", "addon", "empty", "panics"}, report.Order)
	assert.Equal(t, []string{"broken", "core", "addon", "panics"}, order)
	assert.Equal(t, []string{"core", "addon"}, report.Activated)

	require.Len(t, report.Failed, 3)
	assert.Equal(t, "broken", report.Failed[0].ID)
	assert.Equal(t, "boom", report.Failed[0].Error)
	assert.Equal(t, "empty", report.Failed[1].ID)
	assert.Contains(t, report.Failed[1].Error, ErrNoEntry.Error())
	assert.Equal(t, "panics", report.Failed[2].ID)
	assert.Contains(t, report.Failed[2].Error, "kaboom")

	require.Len(t, report.Rejected, 1)
	assert.Equal(t, "orphan", report.Rejected[0].ID)
	assert.Equal(t, resolver.MissingHardDependency, report.Rejected[0].Reason)

	require.Len(t, report.Provenance, 1)
	assert.Equal(t, "addon", report.Provenance[0].OwnerID)
	assert.Equal(t, "core", report.Provenance[0].CreatorID)

	blob, ok := out.Table(leaves.TableItemData)
	require.True(t, ok)
	assert.Contains(t, blob, "\n25@@SingleAlly\n")
	assert.NotEmpty(t, report.Outputs)
}

func TestRunSkipsDependentsOfFailedBuds(t *testing.T) {
	var ran []string
	track := func(id string, ext api.Extension) api.Extension {
		return api.ExtensionFunc(func(ctx context.Context, v *api.Venus) error {
			ran = append(ran, id)
			return ext.Activate(ctx, v)
		})
	}
	opts, _ := options(mapLoader{
		"base": track("base", api.ExtensionFunc(func(context.Context, *api.Venus) error {
			return errors.New("boom")
		})),
		"child":      track("child", registerItem("Sword")),
		"grandchild": track("grandchild", registerItem("Shield")),
		"soft":       track("soft", registerItem("Bow")),
	})

	soft := candidate("soft")
	soft.Manifest.Dependencies = []manifest.Dependency{{ID: "base", Optional: true}}

	report, err := Run(context.Background(), []manifest.Candidate{
		candidate("base"),
		candidate("child", "base"),
		candidate("grandchild", "child"),
		soft,
	}, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"base", "soft"}, ran)
	assert.Equal(t, []string{"soft"}, report.Activated)
	require.Len(t, report.Failed, 3)
	assert.Equal(t, Failure{ID: "base", Error: "boom"}, report.Failed[0])
	assert.Equal(t, "child", report.Failed[1].ID)
	assert.Equal(t, ErrDependencyFailed.Error()+": base", report.Failed[1].Error)
	assert.Equal(t, "grandchild", report.Failed[2].ID)
	assert.Equal(t, ErrDependencyFailed.Error()+": child", report.Failed[2].Error)
}

func TestRunStrict(t *testing.T) {
	opts, out := options(mapLoader{"core": registerItem("Sword")})
	opts.Strict = true

	report, err := Run(context.Background(), []manifest.Candidate{
		candidate("core"),
		candidate("orphan", "missing"),
	}, opts)
	require.ErrorIs(t, err, ErrRejected)
	require.NotNil(t, report)
	assert.Empty(t, report.Activated)
	assert.Len(t, report.Rejected, 1)
	assert.Empty(t, out.Paths())
}

func TestRunCancelled(t *testing.T) {
	opts, out := options(mapLoader{"core": registerItem("Sword")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, []manifest.Candidate{candidate("core")}, opts)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.Paths())
}

func TestRunNeedsCollaborators(t *testing.T) {
	_, err := Run(context.Background(), nil, Options{})
	assert.Error(t, err)
}

func TestRunNothingTouched(t *testing.T) {
	opts, out := options(mapLoader{})
	report, err := Run(context.Background(), nil, opts)
	require.NoError(t, err)
	assert.Empty(t, report.Outputs)
	assert.Empty(t, out.Paths())
}

type handlerModule struct{}

func (handlerModule) Register(h *handlers.Handlers) {
	h.Register("core.dll", registerItem("Sword"))
}

func TestChain(t *testing.T) {
	a := resolver.Activation{Manifest: candidate("core").Manifest}
	ctx := context.Background()

	t.Run("handler then content", func(t *testing.T) {
		var ran []string
		content := LoaderFunc(func(context.Context, resolver.Activation) (api.Extension, error) {
			return api.ExtensionFunc(func(context.Context, *api.Venus) error {
				ran = append(ran, "content")
				return nil
			}), nil
		})
		h := handlers.New()
		h.Register("core.dll", api.ExtensionFunc(func(context.Context, *api.Venus) error {
			ran = append(ran, "handler")
			return nil
		}))

		ext, err := Chain(HandlerLoader{Handlers: h}, content).Load(ctx, a)
		require.NoError(t, err)
		require.NoError(t, ext.Activate(ctx, nil))
		assert.Equal(t, []string{"handler", "content"}, ran)
	})

	t.Run("single loader", func(t *testing.T) {
		ext, err := Chain(HandlerLoader{Handlers: handlers.New(handlerModule{})}).Load(ctx, a)
		require.NoError(t, err)
		assert.NotNil(t, ext)
	})

	t.Run("nothing found", func(t *testing.T) {
		_, err := Chain(HandlerLoader{}, mapLoader{}).Load(ctx, a)
		assert.ErrorIs(t, err, ErrNoEntry)
	})

	t.Run("loader error stops the chain", func(t *testing.T) {
		failing := LoaderFunc(func(context.Context, resolver.Activation) (api.Extension, error) {
			return nil, errors.New("bad content")
		})
		_, err := Chain(failing, mapLoader{"core": registerItem("Sword")}).Load(ctx, a)
		assert.EqualError(t, err, "bad content")
	})
}
