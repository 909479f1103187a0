package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vk/rootloader/internal/app"
)

func resolveCmd(opts *options, errW io.Writer) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the load order and every rejected bud without activating anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			a, err := opts.readOnlyApp(errW)
			if err != nil {
				return err
			}
			res, err := a.Resolve(cmd.Context())
			if err != nil {
				return err
			}
			return writeResolution(cmd.OutOrStdout(), format, res)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format. Options: 'text', 'json' or 'yaml'.")
	return cmd
}

func activateCmd(opts *options, errW io.Writer) *cobra.Command {
	var (
		format string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "activate",
		Short: "Activate every bud and write the patched tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			a, err := opts.newApp(errW, dryRun)
			if err != nil {
				return err
			}
			report, runErr := a.Run(cmd.Context())
			if report != nil {
				if err := writeReport(cmd.OutOrStdout(), format, report, a.Languages()); err != nil {
					return err
				}
			}
			return runErr
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format. Options: 'text', 'json' or 'yaml'.")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run every bud but keep the patched tables in memory.")
	return cmd
}

func languagesCmd(opts *options, errW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "Print the language table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.readOnlyApp(errW)
			if err != nil {
				return err
			}
			langs := a.Languages()
			for _, key := range langs.Keys() {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", key, langs.Name(key)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "rootloader %s\n", app.Version)
			return err
		},
	}
}
