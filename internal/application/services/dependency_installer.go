package services

import (
	"context"
	"log/slog"

	apperrors "github.com/omniforge-dev/omniforge/internal/application/errors"
	"github.com/omniforge-dev/omniforge/internal/application/ports"
	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/omniforge-dev/omniforge/internal/domain/values"
)

// DependencyInstaller implements ports.PackageInstaller for one run.
// A package name is submitted to the package manager at most once per run,
// however many units declare it.
type DependencyInstaller struct {
	manager     ports.PackageManager
	installed   *entities.InstalledPackageSet
	logger      *slog.Logger
	skipInstall bool
}

// NewDependencyInstaller creates an installer with an empty package set.
// With skipInstall the manager is never called, but packages are still
// recorded so later requests in the same run are deduplicated.
func NewDependencyInstaller(manager ports.PackageManager, skipInstall bool, logger *slog.Logger) *DependencyInstaller {
	if logger == nil {
		logger = slog.Default()
	}
	return &DependencyInstaller{
		manager:     manager,
		installed:   entities.NewInstalledPackageSet(),
		logger:      logger,
		skipInstall: skipInstall,
	}
}

// Install submits the packages not yet seen in this run. It returns the
// names that were newly submitted (recorded, in the skip-install case).
func (i *DependencyInstaller) Install(
	ctx context.Context,
	unitID values.UnitID,
	packages []values.PackageSpec,
	dev bool,
) ([]string, error) {
	missing := make([]values.PackageSpec, 0, len(packages))
	names := make([]string, 0, len(packages))
	seen := make(map[string]bool, len(packages))
	for _, pkg := range packages {
		if i.installed.Contains(pkg.Name()) || seen[pkg.Name()] {
			continue
		}
		seen[pkg.Name()] = true
		missing = append(missing, pkg)
		names = append(names, pkg.Name())
	}

	if len(missing) == 0 {
		i.logger.Debug("packages already installed in this run", "unit", unitID.String(), "dev", dev)
		return nil, nil
	}

	if i.skipInstall {
		i.logger.Info("skipping package installation", "unit", unitID.String(), "packages", names, "dev", dev)
		i.installed.Add(names...)
		return names, nil
	}

	if i.manager == nil {
		return nil, apperrors.NewInstallFailureError(unitID.String(), names,
			apperrors.NewConfigurationError("package_manager", "no package manager configured", nil))
	}

	i.logger.Info("installing packages",
		"unit", unitID.String(),
		"manager", i.manager.Name(),
		"packages", names,
		"dev", dev)
	if err := i.manager.Install(ctx, missing, dev); err != nil {
		return nil, apperrors.NewInstallFailureError(unitID.String(), names, err)
	}

	i.installed.Add(names...)
	return names, nil
}
