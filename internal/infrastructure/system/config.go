// Package system provides infrastructure for system-level configuration.
// This covers the user config file (~/.pkgreg.yaml), PKGREG_* environment
// variables and command-line overrides, merged through viper.
package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override config keys.
const EnvPrefix = "PKGREG"

// Config represents the user configuration file (~/.pkgreg.yaml).
type Config struct {
	// PackagesPath lists package tree roots, searched in order.
	PackagesPath []string `mapstructure:"packages_path" yaml:"packages_path"`

	// IdentityPolicy is ignore, warn or strict.
	IdentityPolicy string `mapstructure:"identity_policy" yaml:"identity_policy"`

	// EnvPrefix prefixes the per-package variables set on activation.
	EnvPrefix string `mapstructure:"env_prefix" yaml:"env_prefix"`

	// PathSeparator joins path-list values. Defaults to the OS separator.
	PathSeparator string `mapstructure:"path_separator" yaml:"path_separator"`

	// Platform and Arch are exposed to hook conditions.
	Platform string `mapstructure:"platform" yaml:"platform"`
	Arch     string `mapstructure:"arch" yaml:"arch"`

	// SecretScan configures credential detection during validation.
	SecretScan SecretScanConfig `mapstructure:"secret_scan" yaml:"secret_scan"`

	// LoadConcurrency bounds parallel descriptor reads. 0 uses GOMAXPROCS.
	LoadConcurrency int `mapstructure:"load_concurrency" yaml:"load_concurrency"`
}

// SecretScanConfig configures the gitleaks-based secret scanner.
type SecretScanConfig struct {
	// AllowRules lists gitleaks rule IDs whose findings are ignored.
	AllowRules []string `mapstructure:"allow_rules" yaml:"allow_rules"`
	Enabled    bool     `mapstructure:"enabled" yaml:"enabled"`
}

// Identity policies accepted by Validate.
var identityPolicies = []string{"ignore", "warn", "strict"}

// DefaultConfig returns a Config with safe defaults for all fields.
// This is used when no config file exists.
func DefaultConfig() *Config {
	var packages []string
	if home, err := os.UserHomeDir(); err == nil {
		packages = []string{filepath.Join(home, "packages")}
	}
	return &Config{
		PackagesPath:    packages,
		IdentityPolicy:  "warn",
		EnvPrefix:       "PKG",
		PathSeparator:   string(os.PathListSeparator),
		Platform:        HostPlatform(),
		Arch:            HostArch(),
		LoadConcurrency: 0,
		SecretScan: SecretScanConfig{
			Enabled:    true,
			AllowRules: []string{},
		},
	}
}

// HostPlatform returns the platform name used in hook conditions: linux, osx or windows.
func HostPlatform() string {
	if runtime.GOOS == "darwin" {
		return "osx"
	}
	return runtime.GOOS
}

// HostArch returns the architecture name used in hook conditions.
func HostArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "386":
		return "i386"
	default:
		return runtime.GOARCH
	}
}

// ConfigLoader loads configuration through a viper instance.
type ConfigLoader struct {
	v *viper.Viper
}

// NewConfigLoader creates a loader. Passing nil creates a fresh viper instance;
// passing the CLI's instance lets bound flags override file and environment values.
func NewConfigLoader(v *viper.Viper) *ConfigLoader {
	if v == nil {
		v = viper.New()
	}
	return &ConfigLoader{v: v}
}

// Load reads the config file at path, or ~/.pkgreg.yaml when path is empty.
// A missing default file is not an error; a missing explicit file is.
// Precedence: flags > PKGREG_* environment > file > defaults.
func (l *ConfigLoader) Load(path string) (*Config, error) {
	v := l.v
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".pkgreg")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.PackagesPath = splitPathList(cfg.PackagesPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigFileUsed returns the file the last Load read, if any.
func (l *ConfigLoader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Validate checks config values.
func (c *Config) Validate() error {
	valid := false
	for _, p := range identityPolicies {
		if c.IdentityPolicy == p {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("identity_policy %q is invalid (valid: %s)", c.IdentityPolicy, strings.Join(identityPolicies, ", "))
	}
	if c.LoadConcurrency < 0 {
		return fmt.Errorf("load_concurrency must not be negative")
	}
	if c.PathSeparator == "" {
		return fmt.Errorf("path_separator must not be empty")
	}
	return nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("packages_path", d.PackagesPath)
	v.SetDefault("identity_policy", d.IdentityPolicy)
	v.SetDefault("env_prefix", d.EnvPrefix)
	v.SetDefault("path_separator", d.PathSeparator)
	v.SetDefault("platform", d.Platform)
	v.SetDefault("arch", d.Arch)
	v.SetDefault("load_concurrency", d.LoadConcurrency)
	v.SetDefault("secret_scan.enabled", d.SecretScan.Enabled)
	v.SetDefault("secret_scan.allow_rules", d.SecretScan.AllowRules)
}

// splitPathList expands entries such as "/a:/b" (from PKGREG_PACKAGES_PATH)
// and a leading ~ into separate absolute-ish paths.
func splitPathList(entries []string) []string {
	home, _ := os.UserHomeDir()

	var out []string
	for _, entry := range entries {
		for _, p := range filepath.SplitList(entry) {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if home != "" && (p == "~" || strings.HasPrefix(p, "~/")) {
				p = filepath.Join(home, strings.TrimPrefix(p, "~"))
			}
			out = append(out, p)
		}
	}
	return out
}
