package execution

import (
	"testing"

	"github.com/omniforge-dev/omniforge/internal/domain/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunResult_FinalizeSummary(t *testing.T) {
	r := NewRunResult(values.NewRunID(), false)
	r.AddUnitResult(UnitResult{ID: "a", State: values.UnitStateSucceeded, Index: 0})
	r.AddUnitResult(UnitResult{ID: "b", State: values.UnitStateSkipped, SkipReason: values.SkipReasonAlreadySucceeded, Index: 1})
	r.AddUnitResult(UnitResult{ID: "c", State: values.UnitStateFailed, Index: 2})
	r.AddUnitResult(UnitResult{ID: "d", State: values.UnitStatePending, Index: 3})

	r.Finalize()

	assert.Equal(t, RunSummary{
		TotalUnits:     4,
		SucceededUnits: 1,
		SkippedUnits:   1,
		FailedUnits:    1,
		PendingUnits:   1,
	}, r.Summary)
	assert.False(t, r.EndTime.Before(r.StartTime))
}

func TestRunResult_FailedAndExecuted(t *testing.T) {
	r := NewRunResult(values.NewRunID(), false)
	assert.Nil(t, r.Failed())

	r.AddUnitResult(UnitResult{ID: "a", State: values.UnitStateSucceeded})
	r.AddUnitResult(UnitResult{ID: "b", State: values.UnitStateSkipped})
	r.AddUnitResult(UnitResult{ID: "c", State: values.UnitStateFailed, ErrorKind: "UnitExecutionFailure"})

	failed := r.Failed()
	require.NotNil(t, failed)
	assert.Equal(t, "c", failed.ID)
	assert.Equal(t, []string{"a", "c"}, r.Executed())

	state, ok := r.GetUnitState("b")
	assert.True(t, ok)
	assert.Equal(t, values.UnitStateSkipped, state)

	_, ok = r.GetUnitState("missing")
	assert.False(t, ok)
}
