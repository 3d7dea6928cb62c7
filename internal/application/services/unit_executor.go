package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	apperrors "github.com/omniforge-dev/omniforge/internal/application/errors"
	"github.com/omniforge-dev/omniforge/internal/application/ports"
	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/omniforge-dev/omniforge/internal/domain/execution"
	"github.com/omniforge-dev/omniforge/internal/domain/values"
)

// RunScope is the state one run shares with every unit it executes.
type RunScope struct {
	RunID     values.RunID
	Flags     *entities.RunFlags
	Resolver  ports.SettingsResolver
	Installer ports.PackageInstaller
}

// UnitExecutor runs a single unit through its state machine. The ledger
// check, the dry-run short-circuit and the post-success ledger write live
// here so unit bodies never implement them.
type UnitExecutor struct {
	ledger      ports.Ledger
	reporter    ports.Reporter
	logger      *slog.Logger
	projectRoot string
}

// NewUnitExecutor creates a unit executor.
func NewUnitExecutor(ledger ports.Ledger, reporter ports.Reporter, projectRoot string, logger *slog.Logger) *UnitExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &UnitExecutor{
		ledger:      ledger,
		reporter:    reporter,
		logger:      logger,
		projectRoot: projectRoot,
	}
}

// Execute evaluates the unit and returns its final result. A non-nil error
// means the unit failed and the run must stop.
//
// Rules, in order:
//  1. already in the ledger and not forced: skipped(already-succeeded)
//  2. dry-run: skipped(dry-run); nothing is invoked or written
//  3. otherwise running: settings, then packages, then the body
//  4. body succeeded: ledger write, then succeeded
//  5. any error: failed, no ledger write
func (e *UnitExecutor) Execute(ctx context.Context, unit ports.Unit, scope *RunScope) (execution.UnitResult, error) {
	desc := unit.Descriptor
	id := desc.ID()
	start := time.Now()

	result := execution.UnitResult{
		ID:        id.String(),
		Name:      desc.Name(),
		Phase:     desc.Phase().Int(),
		PhaseName: desc.PhaseName(),
		State:     values.UnitStatePending,
		Forced:    scope.Flags.ForceApplies(id),
	}

	if !result.Forced {
		done, err := e.ledger.HasSucceeded(ctx, id)
		if err != nil {
			return e.fail(desc, result, start, apperrors.NewLedgerFailureError(id.String(), "read", err))
		}
		if done {
			return e.skip(desc, result, values.SkipReasonAlreadySucceeded), nil
		}
	}

	if scope.Flags.DryRun() {
		// Resolution is read-only; report missing keys without running.
		_, result.MissingSettings = resolveSettings(scope.Resolver, desc)
		return e.skip(desc, result, values.SkipReasonDryRun), nil
	}

	result.State = values.UnitStateRunning
	e.reporter.Step(desc, "running", "phase", desc.Phase().Int(), "forced", result.Forced)

	resolved, missing := resolveSettings(scope.Resolver, desc)
	if len(missing) > 0 {
		result.MissingSettings = missing
		return e.fail(desc, result, start, apperrors.NewMissingRequiredSettingError(id.String(), missing[0]))
	}

	// The running unit is allowed to finish even if the run is interrupted.
	bodyCtx := context.WithoutCancel(ctx)

	installed, err := e.installDependencies(bodyCtx, desc, scope)
	result.Installed = installed
	if err != nil {
		return e.fail(desc, result, start, err)
	}

	rc := &ports.RunContext{
		RunID:       scope.RunID,
		Unit:        desc,
		Flags:       scope.Flags,
		Settings:    resolved,
		Resolver:    scope.Resolver,
		Installer:   scope.Installer,
		Logger:      e.logger.With("unit", id.String()),
		ProjectRoot: e.projectRoot,
	}
	if err := unit.Action.Run(bodyCtx, rc); err != nil {
		var execErr *apperrors.UnitExecutionFailureError
		if !errors.As(err, &execErr) {
			err = apperrors.NewUnitExecutionFailureError(id.String(), -1, err)
		}
		return e.fail(desc, result, start, err)
	}

	if err := e.ledger.MarkSucceeded(bodyCtx, id, scope.RunID); err != nil {
		return e.fail(desc, result, start, apperrors.NewLedgerFailureError(id.String(), "write", err))
	}

	result.State = values.UnitStateSucceeded
	result.Duration = time.Since(start)
	e.reporter.OK(desc, result.Duration)
	return result, nil
}

func (e *UnitExecutor) installDependencies(ctx context.Context, desc *entities.UnitDescriptor, scope *RunScope) ([]string, error) {
	var installed []string
	if pkgs := desc.Packages(); len(pkgs) > 0 && !scope.Flags.DevOnly() {
		names, err := scope.Installer.Install(ctx, desc.ID(), pkgs, false)
		if err != nil {
			return installed, err
		}
		installed = append(installed, names...)
	}
	if pkgs := desc.DevPackages(); len(pkgs) > 0 && !scope.Flags.NoDev() {
		names, err := scope.Installer.Install(ctx, desc.ID(), pkgs, true)
		if err != nil {
			return installed, err
		}
		installed = append(installed, names...)
	}
	return installed, nil
}

func (e *UnitExecutor) skip(desc *entities.UnitDescriptor, result execution.UnitResult, reason values.SkipReason) execution.UnitResult {
	result.State = values.UnitStateSkipped
	result.SkipReason = reason
	e.reporter.Skip(desc, reason)
	return result
}

func (e *UnitExecutor) fail(
	desc *entities.UnitDescriptor,
	result execution.UnitResult,
	start time.Time,
	err error,
) (execution.UnitResult, error) {
	result.State = values.UnitStateFailed
	result.ErrorKind = string(apperrors.KindOf(err))
	result.Error = err.Error()
	result.Duration = time.Since(start)
	e.reporter.Error(desc, err)
	return result, err
}

// resolveSettings resolves every declared key. Missing keys are returned in
// declared order.
func resolveSettings(resolver ports.SettingsResolver, desc *entities.UnitDescriptor) (map[string]values.Setting, []string) {
	keys := desc.Settings()
	resolved := make(map[string]values.Setting, len(keys))
	var missing []string
	for _, key := range keys {
		if resolver == nil {
			missing = append(missing, key)
			continue
		}
		s, ok := resolver.Resolve(key)
		if !ok {
			missing = append(missing, key)
			continue
		}
		resolved[key] = s
	}
	return resolved, missing
}
