package main

import (
	"github.com/spf13/cobra"

	"github.com/reglet-dev/pkgreg/internal/application/dto"
)

func newFindCmd() *cobra.Command {
	opts := DefaultCommonOptions("table", "json", "yaml")

	cmd := &cobra.Command{
		Use:   "find <name> [constraint]",
		Short: "Show the highest version of a package matching a constraint",
		Example: `  pkgreg find python
  pkgreg find python 3.10
  pkgreg find maya ">=2024, <2026" --format json`,
		Args: cobra.RangeArgs(1, 2),
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.ValidateFlags()
		},
		RunE: withContainer(func(ctx *CommandContext, cmd *cobra.Command, args []string) error {
			runCtx, cancel := opts.ApplyToContext(ctx.Context)
			defer cancel()

			reg, err := ctx.Container.Registry(runCtx)
			if err != nil {
				return err
			}

			constraint := ""
			if len(args) == 2 {
				constraint = args[1]
			}
			pkg, err := reg.Find(args[0], constraint)
			if err != nil {
				return err
			}

			formatter, err := opts.Formatter(ctx.Container.Formatters(), cmd.OutOrStdout(), "")
			if err != nil {
				return err
			}
			return formatter.FormatPackages([]dto.PackageInfo{dto.NewPackageInfo(pkg)})
		}),
	}

	opts.RegisterFlags(cmd)
	return cmd
}

func init() {
	rootCmd.AddCommand(newFindCmd())
}
