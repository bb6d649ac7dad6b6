package main

import (
	"github.com/spf13/cobra"

	"github.com/reglet-dev/pkgreg/internal/application/dto"
	"github.com/reglet-dev/pkgreg/internal/domain/entities"
	"github.com/reglet-dev/pkgreg/internal/domain/services"
)

// ListOptions holds options for the list command.
type ListOptions struct {
	CommonOptions
	latest     bool
	exclude    []string
	requires   []string
	filterExpr string
}

func newListCmd() *cobra.Command {
	opts := &ListOptions{CommonOptions: DefaultCommonOptions("table", "json", "yaml")}

	cmd := &cobra.Command{
		Use:   "list [name]",
		Short: "List packages, or every version of one package",
		Long: `List the packages of the tree, lowest version first.

Filtering:
  --latest                  Only the highest matching version of each package
  --requires python         Packages requiring python (variants included)
  --exclude legacy          Drop packages by name
  --filter "major >= 2024"  Expression over name, version, major, minor, uuid,
                            description, authors, requires, has_variants, root`,
		Example: `  pkgreg list
  pkgreg list --latest --requires python
  pkgreg list python --format yaml`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.ValidateFlags()
		},
		RunE: withContainer(func(ctx *CommandContext, cmd *cobra.Command, args []string) error {
			filter := services.NewPackageFilter().
				WithExcludedNames(opts.exclude).
				WithRequires(opts.requires)
			if opts.filterExpr != "" {
				program, err := services.CompilePackageFilter(opts.filterExpr)
				if err != nil {
					return err
				}
				filter = filter.WithFilterExpression(program)
			}

			runCtx, cancel := opts.ApplyToContext(ctx.Context)
			defer cancel()

			reg, err := ctx.Container.Registry(runCtx)
			if err != nil {
				return err
			}

			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			packages, err := listPackages(reg, name, opts.latest, filter)
			if err != nil {
				return err
			}

			formatter, err := opts.Formatter(ctx.Container.Formatters(), cmd.OutOrStdout(), "")
			if err != nil {
				return err
			}
			return formatter.FormatPackages(packages)
		}),
	}

	opts.RegisterFlags(cmd)
	cmd.Flags().BoolVar(&opts.latest, "latest", false, "Show only the highest matching version of each package")
	cmd.Flags().StringSliceVar(&opts.exclude, "exclude", nil, "Exclude packages by name (comma-separated)")
	cmd.Flags().StringSliceVar(&opts.requires, "requires", nil, "Only packages requiring any of these names (comma-separated)")
	cmd.Flags().StringVar(&opts.filterExpr, "filter", "", "Filter expression (e.g. \"major >= 2024 && has_variants\")")
	return cmd
}

// listPackages returns the versions of name (all packages when name is empty)
// that pass filter, lowest version first. An unknown name is a NotFoundError.
func listPackages(reg *entities.Registry, name string, latest bool, filter *services.PackageFilter) ([]dto.PackageInfo, error) {
	var pkgs []*entities.Package
	if name != "" {
		pkgs = reg.Versions(name)
		if len(pkgs) == 0 {
			return nil, &entities.NotFoundError{Name: name}
		}
	} else {
		pkgs = reg.All()
	}

	if filter != nil {
		pkgs = filter.Apply(pkgs)
	}
	if latest {
		pkgs = highestPerName(pkgs)
	}

	out := make([]dto.PackageInfo, 0, len(pkgs))
	for _, pkg := range pkgs {
		out = append(out, dto.NewPackageInfo(pkg))
	}
	return out, nil
}

// highestPerName keeps the last package of each name run; input is ordered
// by name, then version.
func highestPerName(pkgs []*entities.Package) []*entities.Package {
	var out []*entities.Package
	for i, pkg := range pkgs {
		if i+1 < len(pkgs) && pkgs[i+1].Name().Equals(pkg.Name()) {
			continue
		}
		out = append(out, pkg)
	}
	return out
}

func init() {
	rootCmd.AddCommand(newListCmd())
}
