package values

import "fmt"

// UnitState is where a unit is in the executor's state machine.
type UnitState string

const (
	// UnitStatePending means the unit has not been reached (yet)
	UnitStatePending UnitState = "pending"
	// UnitStateSkipped means the unit was evaluated but its body did not run
	UnitStateSkipped UnitState = "skipped"
	// UnitStateRunning means the body is executing
	UnitStateRunning UnitState = "running"
	// UnitStateSucceeded means the body returned success and the ledger was updated
	UnitStateSucceeded UnitState = "succeeded"
	// UnitStateFailed means the unit errored; no ledger write happened
	UnitStateFailed UnitState = "failed"
)

// SkipReason explains a UnitStateSkipped.
type SkipReason string

const (
	// SkipReasonNone is the zero reason
	SkipReasonNone SkipReason = ""
	// SkipReasonAlreadySucceeded means the ledger already records a success
	SkipReasonAlreadySucceeded SkipReason = "already-succeeded"
	// SkipReasonDryRun means --dry-run suppressed execution
	SkipReasonDryRun SkipReason = "dry-run"
)

// IsTerminal reports whether no further transition can happen.
func (s UnitState) IsTerminal() bool {
	return s == UnitStateSkipped || s == UnitStateSucceeded || s == UnitStateFailed
}

// IsFailure returns true if the unit failed
func (s UnitState) IsFailure() bool {
	return s == UnitStateFailed
}

// Validate returns an error if the state value is invalid
func (s UnitState) Validate() error {
	switch s {
	case UnitStatePending, UnitStateSkipped, UnitStateRunning, UnitStateSucceeded, UnitStateFailed:
		return nil
	default:
		return fmt.Errorf("invalid unit state: %s", s)
	}
}

// Label renders the state with its skip reason, e.g. "skipped(dry-run)".
func (s UnitState) Label(reason SkipReason) string {
	if s == UnitStateSkipped && reason != SkipReasonNone {
		return fmt.Sprintf("%s(%s)", s, reason)
	}
	return string(s)
}
