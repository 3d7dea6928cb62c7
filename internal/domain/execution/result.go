// Package execution provides domain models for run results.
package execution

import (
	"time"

	"github.com/omniforge-dev/omniforge/internal/domain/values"
)

// RunResult represents the complete result of one orchestrator run.
type RunResult struct {
	StartTime time.Time     `json:"start_time" yaml:"start_time"`
	EndTime   time.Time     `json:"end_time" yaml:"end_time"`
	Version   string        `json:"omniforge_version,omitempty" yaml:"omniforge_version,omitempty"`
	Flags     []string      `json:"flags,omitempty" yaml:"flags,omitempty"`
	Units     []UnitResult  `json:"units" yaml:"units"`
	Summary   RunSummary    `json:"summary" yaml:"summary"`
	Duration  time.Duration `json:"duration_ns" yaml:"duration_ns"`
	DryRun    bool          `json:"dry_run" yaml:"dry_run"`
	RunID     values.RunID  `json:"run_id" yaml:"run_id"`
}

// UnitResult represents what happened to a single unit.
type UnitResult struct {
	ID              string            `json:"id" yaml:"id"`
	Name            string            `json:"name" yaml:"name"`
	Phase           int               `json:"phase" yaml:"phase"`
	PhaseName       string            `json:"phase_name,omitempty" yaml:"phase_name,omitempty"`
	State           values.UnitState  `json:"state" yaml:"state"`
	SkipReason      values.SkipReason `json:"skip_reason,omitempty" yaml:"skip_reason,omitempty"`
	ErrorKind       string            `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Error           string            `json:"error,omitempty" yaml:"error,omitempty"`
	Installed       []string          `json:"installed,omitempty" yaml:"installed,omitempty"`
	MissingSettings []string          `json:"missing_settings,omitempty" yaml:"missing_settings,omitempty"`
	Forced          bool              `json:"forced,omitempty" yaml:"forced,omitempty"`
	Index           int               `json:"index" yaml:"index"`
	Duration        time.Duration     `json:"duration_ns" yaml:"duration_ns"`
}

// RunSummary provides aggregate statistics about the run.
type RunSummary struct {
	TotalUnits     int `json:"total_units" yaml:"total_units"`
	SucceededUnits int `json:"succeeded_units" yaml:"succeeded_units"`
	SkippedUnits   int `json:"skipped_units" yaml:"skipped_units"`
	FailedUnits    int `json:"failed_units" yaml:"failed_units"`
	PendingUnits   int `json:"pending_units" yaml:"pending_units"`
}

// NewRunResult creates a new run result.
func NewRunResult(id values.RunID, dryRun bool) *RunResult {
	return &RunResult{
		RunID:     id,
		StartTime: time.Now(),
		Units:     make([]UnitResult, 0),
		DryRun:    dryRun,
	}
}

// AddUnitResult appends a unit result. Runs are sequential, so no locking.
func (r *RunResult) AddUnitResult(ur UnitResult) {
	r.Units = append(r.Units, ur)
}

// GetUnitState returns the state of a unit by ID.
func (r *RunResult) GetUnitState(id string) (values.UnitState, bool) {
	for _, u := range r.Units {
		if u.ID == id {
			return u.State, true
		}
	}
	return "", false
}

// Failed returns the failed unit, if any.
func (r *RunResult) Failed() *UnitResult {
	for i := range r.Units {
		if r.Units[i].State == values.UnitStateFailed {
			return &r.Units[i]
		}
	}
	return nil
}

// Executed returns the IDs of units whose body ran, in execution order.
func (r *RunResult) Executed() []string {
	var ids []string
	for _, u := range r.Units {
		if u.State == values.UnitStateSucceeded || u.State == values.UnitStateFailed {
			ids = append(ids, u.ID)
		}
	}
	return ids
}

// Finalize completes the run result and calculates the summary.
func (r *RunResult) Finalize() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.calculateSummary()
}

func (r *RunResult) calculateSummary() {
	r.Summary = RunSummary{TotalUnits: len(r.Units)}
	for _, u := range r.Units {
		switch u.State {
		case values.UnitStateSucceeded:
			r.Summary.SucceededUnits++
		case values.UnitStateSkipped:
			r.Summary.SkippedUnits++
		case values.UnitStateFailed:
			r.Summary.FailedUnits++
		case values.UnitStatePending, values.UnitStateRunning:
			r.Summary.PendingUnits++
		}
	}
}
