package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/pkgreg/internal/application/dto"
	"github.com/reglet-dev/pkgreg/internal/application/ports"
	"github.com/reglet-dev/pkgreg/internal/infrastructure/config"
	"github.com/reglet-dev/pkgreg/internal/infrastructure/container"
)

func newValidateCmd() *cobra.Command {
	opts := DefaultCommonOptions("table", "json", "yaml", "junit", "sarif")

	cmd := &cobra.Command{
		Use:   "validate [path...]",
		Short: "Check descriptors and report every problem found",
		Long: `Validate package descriptors against the schema and check for duplicate
versions, diverging uuids, unknown build command placeholders and values
that look like secrets.

Paths may be package tree roots, single descriptor files, or - for a YAML
stream on stdin. Without paths the configured packages path is checked.
Exits non-zero when any error-level finding is reported.`,
		Example: `  pkgreg validate
  pkgreg validate ./packages --format sarif > pkgreg.sarif
  cat package.yaml | pkgreg validate -`,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.ValidateFlags()
		},
		RunE: withContainer(func(ctx *CommandContext, cmd *cobra.Command, args []string) error {
			runCtx, cancel := opts.ApplyToContext(ctx.Context)
			defer cancel()

			sources, err := validateSources(ctx.Container, cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			report, err := ctx.Container.LintService().Lint(runCtx, sources...)
			if err != nil {
				return err
			}

			formatter, err := opts.Formatter(ctx.Container.Formatters(), cmd.OutOrStdout(), "")
			if err != nil {
				return err
			}
			if err := formatter.FormatLint(report); err != nil {
				return err
			}

			if report.HasErrors() {
				return fmt.Errorf("validation failed: %d errors", report.Count(dto.LevelError))
			}
			return nil
		}),
	}

	opts.RegisterFlags(cmd)
	return cmd
}

// validateSources maps command-line paths to descriptor sources.
func validateSources(c *container.Container, stdin io.Reader, paths []string) ([]ports.DescriptorSource, error) {
	if len(paths) == 0 {
		return c.Sources(), nil
	}

	var sources []ports.DescriptorSource
	for _, p := range paths {
		if p == "-" {
			sources = append(sources, config.NewReaderSource("<stdin>", stdin))
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot validate %s: %w", p, err)
		}
		if info.IsDir() {
			sources = append(sources, c.Sources(p)...)
		} else {
			sources = append(sources, config.NewFileSource(p))
		}
	}
	return sources, nil
}

func init() {
	rootCmd.AddCommand(newValidateCmd())
}
