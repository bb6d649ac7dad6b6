package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/pkgreg/internal/application/ports"
)

// CommonOptions contains output and execution flags shared by commands.
type CommonOptions struct {
	// Output
	Format  string
	formats []string

	// Execution
	Timeout time.Duration

	NoColor bool
}

// DefaultCommonOptions returns defaults for a command accepting formats.
// The first format is the default.
func DefaultCommonOptions(formats ...string) CommonOptions {
	if len(formats) == 0 {
		formats = []string{"table", "json", "yaml"}
	}
	return CommonOptions{
		Format:  formats[0],
		formats: formats,
		Timeout: time.Minute,
	}
}

// RegisterFlags adds common flags to a cobra command.
func (opts *CommonOptions) RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&opts.Format, "format", opts.Format,
		"Output format: "+strings.Join(opts.formats, ", "))
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", opts.Timeout,
		"Timeout for loading the package tree (0 to disable)")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false,
		"Disable colored table output")
}

// ApplyToContext applies timeout to context.
// Returns new context and cancel function.
func (opts *CommonOptions) ApplyToContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if opts.Timeout > 0 {
		return context.WithTimeout(ctx, opts.Timeout)
	}
	return ctx, func() {}
}

// ValidateFlags validates common options.
func (opts *CommonOptions) ValidateFlags() error {
	if opts.Timeout < 0 {
		return fmt.Errorf("--timeout must not be negative")
	}
	if !slices.Contains(opts.formats, opts.Format) {
		return fmt.Errorf("invalid format: %s (valid: %s)", opts.Format, strings.Join(opts.formats, ", "))
	}
	return nil
}

// Formatter creates the formatter selected by --format.
func (opts *CommonOptions) Formatter(factory ports.OutputFormatterFactory, w io.Writer, shell string) (ports.OutputFormatter, error) {
	return factory.Create(opts.Format, w, ports.FormatterOptions{
		Indent: true,
		Shell:  shell,
		Color:  !opts.NoColor,
	})
}
