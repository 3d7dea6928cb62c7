package services_test

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/omniforge-dev/omniforge/internal/application/errors"
	"github.com/omniforge-dev/omniforge/internal/application/ports"
	"github.com/omniforge-dev/omniforge/internal/application/services"
	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/omniforge-dev/omniforge/internal/domain/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenLedger struct{ *fakeLedger }

func (*brokenLedger) HasSucceeded(context.Context, values.UnitID) (bool, error) {
	return false, errors.New("permission denied")
}

func scopeFor(flags *entities.RunFlags, resolver ports.SettingsResolver) *services.RunScope {
	return &services.RunScope{
		RunID:     values.NewRunID(),
		Flags:     flags,
		Resolver:  resolver,
		Installer: services.NewDependencyInstaller(&fakeManager{}, false, discardLogger()),
	}
}

func TestUnitExecutor_KeepsTypedExecutionFailure(t *testing.T) {
	t.Parallel()

	exec := services.NewUnitExecutor(newFakeLedger(), nopReporter{}, "/tmp", discardLogger())
	unit := ports.Unit{
		Descriptor: entities.MustNewUnitDescriptor(entities.UnitFields{ID: "script"}),
		Action: ports.ActionFunc(func(context.Context, *ports.RunContext) error {
			return apperrors.NewUnitExecutionFailureError("script", 7, nil)
		}),
	}

	result, err := exec.Execute(context.Background(), unit, scopeFor(entities.NoFlags(), mapResolver{}))
	require.Error(t, err)

	var execErr *apperrors.UnitExecutionFailureError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, 7, execErr.ExitCode)
	assert.Equal(t, values.UnitStateFailed, result.State)
	assert.Equal(t, "unit script failed with exit code 7", result.Error)
}

func TestUnitExecutor_LedgerReadError(t *testing.T) {
	t.Parallel()

	ran := false
	exec := services.NewUnitExecutor(&brokenLedger{fakeLedger: newFakeLedger()}, nopReporter{}, "/tmp", discardLogger())
	unit := ports.Unit{
		Descriptor: entities.MustNewUnitDescriptor(entities.UnitFields{ID: "a"}),
		Action: ports.ActionFunc(func(context.Context, *ports.RunContext) error {
			ran = true
			return nil
		}),
	}

	result, err := exec.Execute(context.Background(), unit, scopeFor(entities.NoFlags(), mapResolver{}))
	require.Error(t, err)
	assert.False(t, ran)
	assert.Equal(t, string(apperrors.KindLedgerFailure), result.ErrorKind)
	assert.Equal(t, "a", apperrors.FailedUnit(err))
}

func TestUnitExecutor_LedgerWriteErrorNamesUnit(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	ledger.failNext = errors.New("disk full")
	exec := services.NewUnitExecutor(ledger, nopReporter{}, "/tmp", discardLogger())
	unit := ports.Unit{
		Descriptor: entities.MustNewUnitDescriptor(entities.UnitFields{ID: "redis-setup"}),
		Action: ports.ActionFunc(func(context.Context, *ports.RunContext) error {
			return nil
		}),
	}

	result, err := exec.Execute(context.Background(), unit, scopeFor(entities.NoFlags(), mapResolver{}))
	require.Error(t, err)

	var ledgerErr *apperrors.LedgerFailureError
	require.True(t, errors.As(err, &ledgerErr))
	assert.Equal(t, "redis-setup", ledgerErr.UnitID)
	assert.Equal(t, "write", ledgerErr.Op)
	assert.Equal(t, "redis-setup", apperrors.FailedUnit(err))
	assert.Equal(t, string(apperrors.KindLedgerFailure), result.ErrorKind)
	assert.Equal(t, values.UnitStateFailed, result.State)
	assert.Contains(t, result.Error, "unit redis-setup: ledger write failed: disk full")
}

func TestUnitExecutor_ForcedSkipsLedgerRead(t *testing.T) {
	t.Parallel()

	ledger := &brokenLedger{fakeLedger: newFakeLedger()}
	exec := services.NewUnitExecutor(ledger, nopReporter{}, "/tmp", discardLogger())
	unit := ports.Unit{
		Descriptor: entities.MustNewUnitDescriptor(entities.UnitFields{ID: "a"}),
		Action:     ports.ActionFunc(func(context.Context, *ports.RunContext) error { return nil }),
	}

	result, err := exec.Execute(context.Background(), unit, scopeFor(entities.NewRunFlagsBuilder().Force("a").Build(), mapResolver{}))
	require.NoError(t, err)
	assert.True(t, result.Forced)
	assert.Equal(t, values.UnitStateSucceeded, result.State)
	assert.Equal(t, 1, ledger.writes)
}

func TestUnitExecutor_PassesFlagsToBody(t *testing.T) {
	t.Parallel()

	var seen *entities.RunFlags
	exec := services.NewUnitExecutor(newFakeLedger(), nopReporter{}, "/tmp", discardLogger())
	unit := ports.Unit{
		Descriptor: entities.MustNewUnitDescriptor(entities.UnitFields{ID: "a", Flags: []string{"no-verify"}}),
		Action: ports.ActionFunc(func(_ context.Context, rc *ports.RunContext) error {
			seen = rc.Flags
			return nil
		}),
	}

	flags := entities.NewRunFlagsBuilder().Toggle(values.FlagNoVerify, true).Extra("with-docker", "").Build()
	_, err := exec.Execute(context.Background(), unit, scopeFor(flags, mapResolver{}))
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Same(t, flags, seen, "flags are shared by reference")
	assert.True(t, seen.NoVerify())
	assert.True(t, seen.IsSet("with-docker"))
}
