package main

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/pkgreg/internal/application/dto"
	"github.com/reglet-dev/pkgreg/internal/infrastructure/output"
)

// EnvOptions holds options for the env command.
type EnvOptions struct {
	CommonOptions
	shell    string
	lock     string
	fromLock string
	inherit  bool
}

func newEnvCmd() *cobra.Command {
	opts := &EnvOptions{
		CommonOptions: DefaultCommonOptions("shell", "table", "json", "yaml"),
		inherit:       true,
	}

	cmd := &cobra.Command{
		Use:   "env <request>...",
		Short: "Build the environment for a set of packages",
		Long: `Resolve each request to a package version, select variants against the
other requested packages, and apply their environment hooks in order.

The default output is a script for the current shell:

  eval "$(pkgreg env maya-2025 redshift)"`,
		Example: `  pkgreg env python-3.11 --shell fish | source
  pkgreg env maya redshift --format table
  pkgreg env maya redshift --lock maya.lock.yaml
  pkgreg env --from-lock maya.lock.yaml`,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.ValidateFlags()
		},
		RunE: withContainer(func(ctx *CommandContext, cmd *cobra.Command, args []string) error {
			runCtx, cancel := opts.ApplyToContext(ctx.Context)
			defer cancel()

			svc, err := ctx.Container.EnvironmentService(runCtx)
			if err != nil {
				return err
			}

			req := dto.EnvironmentRequest{
				Requests:     args,
				LockfilePath: opts.lock,
				FromLockfile: opts.fromLock,
			}
			if opts.inherit {
				req.BaseEnviron = os.Environ()
			}

			result, err := svc.Activate(runCtx, req)
			if err != nil {
				return err
			}
			for _, v := range result.Variables {
				ctx.Logger.Debug("environment", "name", v.Name, "value", ctx.Container.Redact(v.Value), "unset", v.Unset)
			}

			formatter, err := opts.Formatter(ctx.Container.Formatters(), cmd.OutOrStdout(), opts.shell)
			if err != nil {
				return err
			}
			return formatter.FormatEnvironment(result)
		}),
	}

	opts.RegisterFlags(cmd)
	cmd.Flags().StringVar(&opts.shell, "shell", defaultShell(), "Shell dialect for script output: "+strings.Join(output.Shells(), ", "))
	cmd.Flags().StringVar(&opts.lock, "lock", "", "Write a lockfile pinning the resolved packages")
	cmd.Flags().StringVar(&opts.fromLock, "from-lock", "", "Recreate the environment pinned by a lockfile")
	cmd.Flags().BoolVar(&opts.inherit, "inherit", opts.inherit, "Start from the current process environment")
	cmd.MarkFlagsMutuallyExclusive("lock", "from-lock")

	return cmd
}

// defaultShell guesses the dialect from $SHELL, falling back to bash.
func defaultShell() string {
	name := strings.TrimSuffix(filepath.Base(os.Getenv("SHELL")), ".exe")
	if name == "pwsh" {
		name = output.ShellPowerShell
	}
	if slices.Contains(output.Shells(), name) {
		return name
	}
	return output.ShellBash
}

func init() {
	rootCmd.AddCommand(newEnvCmd())
}
