// Package container provides dependency injection for the application.
package container

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/viper"

	"github.com/reglet-dev/pkgreg/internal/application/ports"
	"github.com/reglet-dev/pkgreg/internal/application/services"
	"github.com/reglet-dev/pkgreg/internal/domain/entities"
	domainservices "github.com/reglet-dev/pkgreg/internal/domain/services"
	"github.com/reglet-dev/pkgreg/internal/infrastructure/config"
	"github.com/reglet-dev/pkgreg/internal/infrastructure/filesystem"
	"github.com/reglet-dev/pkgreg/internal/infrastructure/output"
	"github.com/reglet-dev/pkgreg/internal/infrastructure/secrets"
	"github.com/reglet-dev/pkgreg/internal/infrastructure/system"
	"github.com/reglet-dev/pkgreg/internal/infrastructure/validation"
)

// Container holds all application dependencies.
// The registry is loaded on first use and shared by the services built on it.
type Container struct {
	systemCfg       *system.Config
	logger          *slog.Logger
	registryService *services.RegistryService
	lintService     *services.LintService
	activator       *domainservices.Activator
	lockfiles       *filesystem.FileLockfileRepository
	scanner         *secrets.Scanner
	formatters      *output.FormatterFactory

	registryOnce sync.Once
	registry     *entities.Registry
	registryErr  error
}

// Options configure the container.
type Options struct {
	Logger *slog.Logger
	// Viper carries bound command-line flags; nil uses a fresh instance.
	Viper *viper.Viper
	// SystemConfigPath overrides ~/.pkgreg.yaml.
	SystemConfigPath string
}

// New creates a new dependency injection container.
func New(opts Options) (*Container, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	loader := system.NewConfigLoader(opts.Viper)
	systemCfg, err := loader.Load(opts.SystemConfigPath)
	if err != nil {
		return nil, err
	}
	if used := loader.ConfigFileUsed(); used != "" {
		opts.Logger.Debug("loaded config", "path", used)
	}

	validator, err := validation.NewSchemaValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize descriptor schema: %w", err)
	}

	var scanner *secrets.Scanner
	if systemCfg.SecretScan.Enabled {
		scanner, err = secrets.New(secrets.Config{AllowRules: systemCfg.SecretScan.AllowRules})
		if err != nil {
			return nil, err
		}
	}

	// Create domain services
	conditions := domainservices.NewConditionEvaluator()
	policy := domainservices.ParseIdentityPolicy(systemCfg.IdentityPolicy)
	activator := domainservices.NewActivator(conditions, domainservices.Platform{
		OS:   systemCfg.Platform,
		Arch: systemCfg.Arch,
	}, systemCfg.EnvPrefix)

	// Wire up application services
	registryService := services.NewRegistryService(validator, conditions, policy, opts.Logger)

	// A nil *secrets.Scanner must not reach the port as a non-nil interface
	var secretScanner ports.SecretScanner
	if scanner != nil {
		secretScanner = scanner
	}
	lintService := services.NewLintService(registryService, secretScanner, policy, opts.Logger)

	return &Container{
		systemCfg:       systemCfg,
		logger:          opts.Logger,
		registryService: registryService,
		lintService:     lintService,
		activator:       activator,
		lockfiles:       filesystem.NewFileLockfileRepository(),
		scanner:         scanner,
		formatters:      output.NewFormatterFactory(),
	}, nil
}

// Sources returns a descriptor source over roots, or over the configured
// packages path when roots is empty.
func (c *Container) Sources(roots ...string) []ports.DescriptorSource {
	if len(roots) == 0 {
		roots = c.systemCfg.PackagesPath
	}
	return []ports.DescriptorSource{
		config.NewDirectorySource(roots, c.systemCfg.LoadConcurrency, c.logger),
	}
}

// Registry loads the configured package tree once.
func (c *Container) Registry(ctx context.Context) (*entities.Registry, error) {
	c.registryOnce.Do(func() {
		c.registry, c.registryErr = c.registryService.Load(ctx, c.Sources()...)
	})
	return c.registry, c.registryErr
}

// EnvironmentService returns an environment service over the loaded registry.
func (c *Container) EnvironmentService(ctx context.Context) (*services.EnvironmentService, error) {
	reg, err := c.Registry(ctx)
	if err != nil {
		return nil, err
	}
	return services.NewEnvironmentService(
		reg,
		domainservices.NewVariantResolver(),
		c.activator,
		c.lockfiles,
		c.systemCfg.PathSeparator,
		c.logger,
	), nil
}

// BuildService returns a build service over the loaded registry.
func (c *Container) BuildService(ctx context.Context) (*services.BuildService, error) {
	reg, err := c.Registry(ctx)
	if err != nil {
		return nil, err
	}
	return services.NewBuildService(reg, domainservices.NewCommandRenderer()), nil
}

// RegistryService returns the registry loading service.
func (c *Container) RegistryService() *services.RegistryService {
	return c.registryService
}

// LintService returns the lint service.
func (c *Container) LintService() *services.LintService {
	return c.lintService
}

// Formatters returns the output formatter factory.
func (c *Container) Formatters() ports.OutputFormatterFactory {
	return c.formatters
}

// Redact masks secrets in text for log output. It is a no-op when secret
// scanning is disabled.
func (c *Container) Redact(text string) string {
	if c.scanner == nil {
		return text
	}
	return c.scanner.Redact(text)
}

// SystemConfig returns the system configuration.
func (c *Container) SystemConfig() *system.Config {
	return c.systemCfg
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}
