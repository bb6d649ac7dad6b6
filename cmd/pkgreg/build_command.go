package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/pkgreg/internal/application/dto"
)

func newBuildCommandCmd() *cobra.Command {
	var install, buildPath, sourcePath, root string
	var strict bool

	cmd := &cobra.Command{
		Use:   "build-command <request>",
		Short: "Render the build command of a package",
		Long: `Substitute the placeholders of a package's build_command and print it.
The command is never executed.

{install} and {build_path} are normally supplied by the build launcher and
are left in place when not given, unless --strict is set.`,
		Example: `  pkgreg build-command blender-4.3 --install /opt/blender
  pkgreg build-command blender --strict --install /opt/b --build-path /tmp/b`,
		Args: cobra.ExactArgs(1),
		RunE: withContainer(func(ctx *CommandContext, cmd *cobra.Command, args []string) error {
			values := placeholderValues(map[string]string{
				"install":     install,
				"build_path":  buildPath,
				"source_path": sourcePath,
				"root":        root,
			})

			svc, err := ctx.Container.BuildService(ctx.Context)
			if err != nil {
				return err
			}

			rendered, err := svc.RenderBuildCommand(ctx.Context, dto.BuildCommandRequest{
				Request: args[0],
				Values:  values,
				Strict:  strict,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		}),
	}

	cmd.Flags().StringVar(&install, "install", "", "Install path")
	cmd.Flags().StringVar(&buildPath, "build-path", "", "Build directory")
	cmd.Flags().StringVar(&sourcePath, "source-path", "", "Source directory")
	cmd.Flags().StringVar(&root, "root", "", "Override the package root")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when {install} or {build_path} has no value")

	return cmd
}

// placeholderValues drops flags that were not given so the renderer
// treats them as missing rather than empty.
func placeholderValues(flags map[string]string) map[string]string {
	out := make(map[string]string, len(flags))
	for k, v := range flags {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(newBuildCommandCmd())
}
