package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/vk/rootloader/internal/activation"
	"github.com/vk/rootloader/internal/app"
	"github.com/vk/rootloader/internal/handlers"
)

// Exit codes.
const (
	ExitFailure  = 1
	ExitUsage    = 2
	ExitRejected = 3
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: ExitUsage, Message: fmt.Sprintf(format, args...)}
}

// options are the flags shared by every command.
type options struct {
	cfg     app.Config
	modules []handlers.Module
}

// newApp validates the flags and builds the application.
func (o *options) newApp(outW io.Writer, dryRun bool) (*app.App, error) {
	cfg := o.cfg
	if dryRun {
		cfg.DryRun = true
	}
	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError("%v", err)
	}
	return app.NewApp(outW, config, o.modules...), nil
}

// readOnlyApp builds an application for commands that neither read the
// host data nor write tables.
func (o *options) readOnlyApp(outW io.Writer) (*app.App, error) {
	cfg := o.cfg
	if cfg.DataPath == "" {
		cfg.DataPath = "."
	}
	cfg.DryRun = true
	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError("%v", err)
	}
	return app.NewApp(outW, config, o.modules...), nil
}

// NewRootCommand builds the command tree. Flag defaults come from the
// ROOTLOADER_* environment; logs go to errW and results to outW.
func NewRootCommand(outW, errW io.Writer, modules ...handlers.Module) (*cobra.Command, error) {
	slog.Debug("CLI parser started.")
	cfg, err := app.ConfigFromEnv()
	if err != nil {
		return nil, usageError("%v", err)
	}
	opts := &options{cfg: cfg, modules: modules}

	root := &cobra.Command{
		Use:   "rootloader",
		Short: "Load buds and patch the host's content tables",
		Long: `RootLoader discovers buds, resolves their load order and lets them register
and override content in the host's data tables. The patched tables are written
under the output path with the same layout as the host data root.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%v", err)
	})

	flags := root.PersistentFlags()
	flags.StringVar(&opts.cfg.DataPath, "data", cfg.DataPath, "Host data root holding the baseline tables.")
	flags.StringVar(&opts.cfg.BudsPath, "buds", cfg.BudsPath, "Directory holding one sub-directory per bud.")
	flags.StringVar(&opts.cfg.OutputPath, "output", cfg.OutputPath, "Directory receiving the patched tables.")
	flags.StringVar(&opts.cfg.LogFormat, "log-format", cfg.LogFormat, "Log output format. Options: 'text' or 'json'.")
	flags.StringVar(&opts.cfg.LogLevel, "log-level", cfg.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.BoolVar(&opts.cfg.Strict, "strict", cfg.Strict, "Activate nothing when any bud is rejected.")
	flags.StringVar(&opts.cfg.Languages, "languages", cfg.Languages, "Language table as key=tag pairs, e.g. '0=en,1=ja'.")
	flags.StringVar(&opts.cfg.OtelEndpoint, "otel-endpoint", cfg.OtelEndpoint, "OTLP/HTTP endpoint for traces. Empty disables tracing.")

	root.AddCommand(
		resolveCmd(opts, errW),
		activateCmd(opts, errW),
		languagesCmd(opts, errW),
		versionCmd(),
	)
	return root, nil
}

// Execute runs the command line. Errors that should end the process with a
// specific code are *ExitError.
func Execute(ctx context.Context, outW, errW io.Writer, args []string, modules ...handlers.Module) error {
	root, err := NewRootCommand(outW, errW, modules...)
	if err != nil {
		return err
	}
	root.SetArgs(args)
	err = root.ExecuteContext(ctx)

	var exitErr *ExitError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &exitErr):
		return exitErr
	case errors.Is(err, activation.ErrRejected):
		return &ExitError{Code: ExitRejected, Message: err.Error()}
	}
	return err
}
