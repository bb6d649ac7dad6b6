package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile      string
	verbose      bool
	packagesPath []string
)

// rootCmd is the application entry point.
var rootCmd = &cobra.Command{
	Use:   "pkgreg",
	Short: "Versioned package registry with environment hooks",
	Long: `pkgreg reads a tree of versioned package descriptors and answers
lookup, variant selection, environment activation and build command queries.

Packages live in <root>/<name>/<version>/package.yaml. Roots come from
--packages-path, PKGREG_PACKAGES_PATH or packages_path in ~/.pkgreg.yaml.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupLogging()
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pkgreg.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringSliceVar(&packagesPath, "packages-path", nil, "package tree roots, searched in order")
}

// initConfig binds global flags so they override the config file and environment.
// The file itself is read by the container.
func initConfig() {
	if err := viper.BindPFlag("packages_path", rootCmd.PersistentFlags().Lookup("packages-path")); err != nil {
		slog.Error("failed to bind flag", "flag", "packages-path", "error", err)
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	// Using TextHandler for CLI friendliness
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
