package integrationtests

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/rootloader/internal/activation"
	"github.com/vk/rootloader/internal/app"
	"github.com/vk/rootloader/internal/handlers"
	"github.com/vk/rootloader/internal/testutil"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	Report    *activation.Report
	App       *app.App
	// OutputPath is where the replacement tables were written.
	OutputPath string
}

// Output returns a written table, slash separated relative to the output
// path, or "" when the table was not written.
func (r *HarnessResult) Output(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(r.OutputPath, filepath.FromSlash(name)))
	if os.IsNotExist(err) {
		return ""
	}
	require.NoError(t, err)
	return string(b)
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, cfg app.Config, buds map[string]string, modules ...handlers.Module) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, cfg, buds, modules...)
}

// RunIntegrationTestWithContext runs one full activation pass. The baseline
// fixture is written as the host data root and buds, keyed by path relative
// to the buds root (for example "core/manifest.json"), as the buds. Paths
// left empty in cfg are filled in. Without modules the app registers its
// core modules.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, cfg app.Config, buds map[string]string, modules ...handlers.Module) *HarnessResult {
	t.Helper()

	root := t.TempDir()
	if cfg.DataPath == "" {
		cfg.DataPath = testutil.DataRoot(t, nil)
	}
	cfg.BudsPath = filepath.Join(root, "buds")
	if cfg.OutputPath == "" {
		cfg.OutputPath = filepath.Join(root, "out")
	}
	cfg.LogFormat = "text"
	cfg.LogLevel = "debug"
	testutil.WriteFiles(t, cfg.BudsPath, buds)

	config, err := app.NewConfig(cfg)
	require.NoError(t, err)

	logBuffer := &testutil.SafeBuffer{}
	testApp := app.NewApp(logBuffer, config, modules...)
	report, runErr := testApp.Run(ctx)

	if os.Getenv("ROOTLOADER_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput:  logBuffer.String(),
		Err:        runErr,
		Report:     report,
		App:        testApp,
		OutputPath: cfg.OutputPath,
	}
}
