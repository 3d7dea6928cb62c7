// Package container provides dependency injection for the application.
package container

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/omniforge-dev/omniforge/internal/application/ports"
	"github.com/omniforge-dev/omniforge/internal/application/services"
	"github.com/omniforge-dev/omniforge/internal/infrastructure/logging"
	"github.com/omniforge-dev/omniforge/internal/infrastructure/packages"
	"github.com/omniforge-dev/omniforge/internal/infrastructure/persistence/file"
	"github.com/omniforge-dev/omniforge/internal/infrastructure/persistence/memory"
	"github.com/omniforge-dev/omniforge/internal/infrastructure/settings"
	"github.com/omniforge-dev/omniforge/internal/infrastructure/system"
	"github.com/omniforge-dev/omniforge/internal/infrastructure/units"
)

// Ledger backends.
const (
	LedgerFile   = "file"
	LedgerMemory = "memory"
)

// Container holds all application dependencies.
type Container struct {
	orchestrator *services.Orchestrator
	catalog      *units.Catalog
	ledger       ports.Ledger
	manager      ports.PackageManager
	projectRoot  string
	ledgerPath   string
	logger       *slog.Logger
}

// Options configure the container.
type Options struct {
	Logger      *slog.Logger
	ProjectRoot string
	// UnitsDir overrides units_dir from the project config.
	UnitsDir string
	// LedgerBackend is LedgerFile (default) or LedgerMemory.
	LedgerBackend string
	// Overrides are per-run setting overrides; they win over everything.
	Overrides map[string]string
	// ScriptOutput receives unit script stdout/stderr (stderr by default).
	ScriptOutput io.Writer
}

// New creates a new dependency injection container.
func New(opts Options) (*Container, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ScriptOutput == nil {
		opts.ScriptOutput = os.Stderr
	}

	root, err := projectRoot(opts.ProjectRoot)
	if err != nil {
		return nil, err
	}

	// Load project config
	cfg, err := system.NewConfigLoader().LoadProject(root)
	if err != nil {
		return nil, err
	}
	if opts.UnitsDir != "" {
		cfg.UnitsDir = opts.UnitsDir
	}

	lockTimeout, err := cfg.LockTimeoutDuration()
	if err != nil {
		return nil, err
	}

	ledgerPath := system.ResolvePath(root, cfg.LedgerPath)
	var ledger ports.Ledger
	switch opts.LedgerBackend {
	case "", LedgerFile:
		ledger = file.NewLedger(ledgerPath, file.Options{
			LockTimeout: lockTimeout,
			Logger:      opts.Logger,
		})
	case LedgerMemory:
		ledger = memory.NewLedger()
	default:
		return nil, fmt.Errorf("unknown ledger backend %q (supported: %s, %s)", opts.LedgerBackend, LedgerFile, LedgerMemory)
	}

	manager, err := packages.New(cfg.PackageManager, root, opts.Logger, packages.WithOutput(opts.ScriptOutput))
	if err != nil {
		return nil, err
	}

	catalog := units.NewCatalog(units.CatalogOptions{
		Dir:     system.ResolvePath(root, cfg.UnitsDir),
		Pattern: cfg.UnitPattern,
		Shell:   cfg.Shell,
		Stdout:  opts.ScriptOutput,
		Stderr:  opts.ScriptOutput,
		Logger:  opts.Logger,
	})

	provider := settings.NewProvider(root, cfg.EnvFiles, opts.Overrides, cfg.Defaults)
	reporter := logging.NewSlogReporter(opts.Logger)

	// Wire up use case
	orchestrator := services.NewOrchestrator(
		catalog,
		ledger,
		provider,
		manager,
		reporter,
		root,
		opts.Logger,
	)

	return &Container{
		orchestrator: orchestrator,
		catalog:      catalog,
		ledger:       ledger,
		manager:      manager,
		projectRoot:  root,
		ledgerPath:   ledgerPath,
		logger:       opts.Logger,
	}, nil
}

func projectRoot(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to determine working directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invalid project root %q: %w", dir, err)
	}
	st, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("project root: %w", err)
	}
	if !st.IsDir() {
		return "", fmt.Errorf("project root %s is not a directory", abs)
	}
	return abs, nil
}

// Orchestrator returns the run use case.
func (c *Container) Orchestrator() *services.Orchestrator {
	return c.orchestrator
}

// Ledger returns the ledger port.
func (c *Container) Ledger() ports.Ledger {
	return c.ledger
}

// LedgerPath returns where the file ledger lives (even when unused).
func (c *Container) LedgerPath() string {
	return c.ledgerPath
}

// UnitsDir returns the directory units are loaded from.
func (c *Container) UnitsDir() string {
	return c.catalog.Dir()
}

// PackageManager returns the configured package manager.
func (c *Container) PackageManager() ports.PackageManager {
	return c.manager
}

// ProjectRoot returns the absolute project root.
func (c *Container) ProjectRoot() string {
	return c.projectRoot
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}
