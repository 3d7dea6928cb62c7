// Package services contains application use cases.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/omniforge-dev/omniforge/internal/application/dto"
	apperrors "github.com/omniforge-dev/omniforge/internal/application/errors"
	"github.com/omniforge-dev/omniforge/internal/application/ports"
	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/omniforge-dev/omniforge/internal/domain/execution"
	"github.com/omniforge-dev/omniforge/internal/domain/services"
	"github.com/omniforge-dev/omniforge/internal/domain/values"
)

// Orchestrator runs the whole schedule: load, select, order, then execute
// units one at a time, stopping at the first failure.
// This is a pure application layer component that depends only on ports.
type Orchestrator struct {
	loader      ports.UnitLoader
	ledger      ports.Ledger
	settings    ports.SettingsProvider
	manager     ports.PackageManager
	reporter    ports.Reporter
	scheduler   *services.PhaseScheduler
	projectRoot string
	logger      *slog.Logger
}

// NewOrchestrator creates a new orchestrator.
func NewOrchestrator(
	loader ports.UnitLoader,
	ledger ports.Ledger,
	settings ports.SettingsProvider,
	manager ports.PackageManager,
	reporter ports.Reporter,
	projectRoot string,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		loader:      loader,
		ledger:      ledger,
		settings:    settings,
		manager:     manager,
		reporter:    reporter,
		scheduler:   services.NewPhaseScheduler(),
		projectRoot: projectRoot,
		logger:      logger,
	}
}

// Run executes the schedule. Load and validation errors return a nil
// response. Once execution has started the response is always returned,
// together with the error of the failing unit (or the interruption).
func (o *Orchestrator) Run(ctx context.Context, req dto.RunRequest) (*dto.RunResponse, error) {
	startTime := time.Now()

	flags := req.Flags
	if flags == nil {
		flags = entities.NoFlags()
	}

	units, err := o.loader.LoadUnits(ctx)
	if err != nil {
		return nil, err
	}
	o.logger.Info("units loaded", "count", len(units))

	if err := validateForceTargets(units, flags); err != nil {
		return nil, err
	}

	scheduled, excluded, err := o.plan(units, req.Selection)
	if err != nil {
		return nil, err
	}

	resolver, err := o.settings.NewResolver(ctx)
	if err != nil {
		return nil, apperrors.NewConfigurationError("settings", "failed to load settings sources", err)
	}

	runID := values.NewRunID()
	result := execution.NewRunResult(runID, flags.DryRun())
	result.Version = req.Metadata.Version
	result.Flags = flags.Names()

	installer := NewDependencyInstaller(o.manager, flags.SkipInstall(), o.logger)
	scope := &RunScope{
		RunID:     runID,
		Flags:     flags,
		Resolver:  resolver,
		Installer: installer,
	}
	executor := NewUnitExecutor(o.ledger, o.reporter, o.projectRoot, o.logger)

	o.logger.Info("starting run",
		"run_id", runID.String(),
		"units", len(scheduled),
		"dry_run", flags.DryRun())

	var runErr error
	var warnings []string
	for i, unit := range scheduled {
		if runErr == nil && ctx.Err() != nil {
			runErr = fmt.Errorf("run interrupted before unit %s: %w", unit.Descriptor.ID(), ctx.Err())
			warnings = append(warnings, runErr.Error())
			o.logger.Warn("run interrupted", "next_unit", unit.Descriptor.ID().String())
		}
		if runErr != nil {
			result.AddUnitResult(pendingResult(unit.Descriptor, i))
			continue
		}

		ur, err := executor.Execute(ctx, unit, scope)
		ur.Index = i
		result.AddUnitResult(ur)
		if err != nil {
			runErr = err
		}
	}

	result.Finalize()
	o.logger.Info("run complete",
		"run_id", runID.String(),
		"duration", result.Duration,
		"succeeded", result.Summary.SucceededUnits,
		"skipped", result.Summary.SkippedUnits,
		"failed", result.Summary.FailedUnits,
		"pending", result.Summary.PendingUnits)

	return &dto.RunResponse{
		Result: result,
		Metadata: dto.ResponseMetadata{
			ProcessedAt: time.Now(),
			Duration:    time.Since(startTime),
		},
		Diagnostics: dto.Diagnostics{
			Warnings: warnings,
			Excluded: excluded,
		},
	}, runErr
}

// ListUnits loads and selects units and returns them in schedule order.
// Nothing is executed.
func (o *Orchestrator) ListUnits(ctx context.Context, req dto.ListUnitsRequest) (*dto.ListUnitsResponse, error) {
	units, err := o.loader.LoadUnits(ctx)
	if err != nil {
		return nil, err
	}
	scheduled, excluded, err := o.plan(units, req.Selection)
	if err != nil {
		return nil, err
	}

	descs := make([]*entities.UnitDescriptor, 0, len(scheduled))
	for _, u := range scheduled {
		descs = append(descs, u.Descriptor)
	}
	return &dto.ListUnitsResponse{Units: descs, Excluded: excluded}, nil
}

// plan applies selection, then orders what is left.
func (o *Orchestrator) plan(units []ports.Unit, sel dto.SelectionOptions) ([]ports.Unit, map[string]string, error) {
	filter, err := buildUnitFilter(units, sel)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[string]ports.Unit, len(units))
	descs := make([]*entities.UnitDescriptor, 0, len(units))
	for _, u := range units {
		byID[u.Descriptor.ID().String()] = u
		descs = append(descs, u.Descriptor)
	}

	selected, excluded := filter.Select(descs)
	for id, reason := range excluded {
		o.logger.Debug("unit excluded", "unit", id, "reason", reason)
	}

	ordered := o.scheduler.Schedule(selected)
	scheduled := make([]ports.Unit, 0, len(ordered))
	for _, d := range ordered {
		scheduled = append(scheduled, byID[d.ID().String()])
	}
	return scheduled, excluded, nil
}

func pendingResult(desc *entities.UnitDescriptor, index int) execution.UnitResult {
	return execution.UnitResult{
		ID:        desc.ID().String(),
		Name:      desc.Name(),
		Phase:     desc.Phase().Int(),
		PhaseName: desc.PhaseName(),
		State:     values.UnitStatePending,
		Index:     index,
	}
}
