package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/reglet-dev/pkgreg/internal/domain/values"
	"github.com/reglet-dev/pkgreg/internal/infrastructure/config"
	"github.com/reglet-dev/pkgreg/internal/infrastructure/container"
	"github.com/reglet-dev/pkgreg/internal/templates"
)

const defaultInitVersion = "1.0.0"

// InitOptions holds options for the init command.
type InitOptions struct {
	Name        string
	Version     string
	Dir         string
	Description string
	Authors     []string
	Requires    []string
	Interactive bool
	Force       bool
}

func newInitCmd() *cobra.Command {
	opts := &InitOptions{}

	cmd := &cobra.Command{
		Use:   "init <name> [version]",
		Short: "Create a descriptor for a new package version",
		Long: `Write <dir>/<name>/<version>/package.yaml from a template.

The uuid of the highest existing version of the package is reused so all
versions share one identity; a new package gets a fresh uuid.`,
		Example: `  pkgreg init houdini 20.5
  pkgreg init houdini --interactive
  pkgreg init mytool 0.1 --dir ./packages --requires python-3.11`,
		Args: cobra.RangeArgs(1, 2),
		RunE: withContainer(func(ctx *CommandContext, cmd *cobra.Command, args []string) error {
			opts.Name = args[0]
			if len(args) == 2 {
				opts.Version = args[1]
			}

			if opts.Interactive {
				if err := promptInit(opts); err != nil {
					return err
				}
			}

			path, err := scaffold(ctx.Context, ctx.Container, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s-%s in %s\n", opts.Name, opts.Version, path)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&opts.Dir, "dir", "d", "", "Package tree root (default: first packages path entry)")
	cmd.Flags().StringVar(&opts.Description, "description", "", "Package description")
	cmd.Flags().StringSliceVar(&opts.Authors, "authors", nil, "Package authors (comma-separated)")
	cmd.Flags().StringSliceVar(&opts.Requires, "requires", nil, "Requirements (comma-separated, e.g. 'python-3.11,~openssl-3')")
	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "Prompt for missing fields")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Overwrite an existing descriptor")

	return cmd
}

// promptInit asks for fields that were not given on the command line.
func promptInit(opts *InitOptions) error {
	if opts.Version == "" {
		opts.Version = defaultInitVersion
		err := huh.NewInput().
			Title("Version").
			Value(&opts.Version).
			Validate(func(s string) error {
				_, err := values.ParseVersion(s)
				return err
			}).
			Run()
		if err != nil {
			return err
		}
	}

	if opts.Description == "" {
		err := huh.NewInput().
			Title("Description").
			Value(&opts.Description).
			Run()
		if err != nil {
			return err
		}
	}

	if len(opts.Requires) == 0 {
		var requires string
		err := huh.NewInput().
			Title("Requirements").
			Description("Space or comma separated, e.g. python-3.11 ~openssl-3").
			Value(&requires).
			Validate(func(s string) error {
				for _, r := range splitList(s) {
					if _, err := values.ParseRequirement(r); err != nil {
						return err
					}
				}
				return nil
			}).
			Run()
		if err != nil {
			return err
		}
		opts.Requires = splitList(requires)
	}

	return nil
}

// scaffold writes the descriptor and returns its path.
func scaffold(ctx context.Context, c *container.Container, opts *InitOptions) (string, error) {
	if _, err := values.NewPackageName(opts.Name); err != nil {
		return "", err
	}
	if opts.Version == "" {
		opts.Version = defaultInitVersion
	}
	if _, err := values.ParseVersion(opts.Version); err != nil {
		return "", err
	}
	for _, r := range opts.Requires {
		if _, err := values.ParseRequirement(r); err != nil {
			return "", err
		}
	}

	dir := opts.Dir
	if dir == "" {
		roots := c.SystemConfig().PackagesPath
		if len(roots) == 0 {
			return "", fmt.Errorf("no package tree configured: pass --dir or set packages_path")
		}
		dir = roots[0]
	}

	path := filepath.Join(dir, opts.Name, opts.Version, "package.yaml")
	if !opts.Force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("descriptor already exists: %s (use --force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}

	content, err := templates.Render("package.yaml", templates.DescriptorData{
		Name:        opts.Name,
		Version:     opts.Version,
		UUID:        packageUUID(ctx, c, dir, opts.Name),
		Description: opts.Description,
		Authors:     opts.Authors,
		Requires:    opts.Requires,
	})
	if err != nil {
		return "", err
	}

	// The template must always produce a loadable descriptor.
	docs, err := config.NewReaderSource(path, bytes.NewReader(content)).Read(ctx)
	if err != nil {
		return "", err
	}
	for _, raw := range docs {
		if _, err := c.RegistryService().Build(raw); err != nil {
			return "", fmt.Errorf("generated descriptor is invalid: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("creating package directory: %w", err)
	}
	//nolint:gosec // G306: descriptors are shared with the rest of the studio
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// packageUUID returns the uuid of the highest existing version of name
// under dir, or a new one.
func packageUUID(ctx context.Context, c *container.Container, dir, name string) string {
	reg, err := c.RegistryService().Load(ctx, c.Sources(dir)...)
	if err != nil {
		c.Logger().Warn("could not read existing versions, generating a new uuid", "dir", dir, "error", err)
		return values.NewPackageID().String()
	}

	versions := reg.Versions(name)
	for i := len(versions) - 1; i >= 0; i-- {
		if id := versions[i].ID(); !id.IsZero() {
			c.Logger().Debug("reusing package uuid", "package", versions[i].String(), "uuid", id.String())
			return id.String()
		}
	}
	return values.NewPackageID().String()
}

func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

func init() {
	rootCmd.AddCommand(newInitCmd())
}
