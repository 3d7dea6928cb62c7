package entities_test

import (
	"testing"

	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/omniforge-dev/omniforge/internal/domain/values"
	"github.com/stretchr/testify/assert"
)

func TestRunFlags_Toggles(t *testing.T) {
	t.Parallel()

	flags := entities.NewRunFlagsBuilder().
		Toggle(values.FlagDryRun, true).
		Toggle(values.FlagSkipInstall, true).
		Toggle(values.FlagNoVerify, true).
		Toggle(values.FlagNoVerify, false).
		Build()

	assert.True(t, flags.DryRun())
	assert.True(t, flags.SkipInstall())
	assert.False(t, flags.NoVerify())
	assert.False(t, flags.DevOnly())
	assert.False(t, flags.NoDev())

	assert.True(t, flags.IsSet("dry-run"))
	assert.True(t, flags.IsSet("--skip-install"))
	assert.False(t, flags.IsSet("force"))
}

func TestRunFlags_Extra(t *testing.T) {
	t.Parallel()

	flags := entities.NewRunFlagsBuilder().
		Extra("with-docker", "").
		Extra("redis-image", "redis:7").
		Build()

	assert.True(t, flags.IsSet("with-docker"))
	assert.True(t, flags.IsSet("--redis-image"))
	assert.False(t, flags.IsSet("unknown"))
	assert.False(t, flags.IsSet("Not A Flag"))

	v, ok := flags.Value("redis-image")
	assert.True(t, ok)
	assert.Equal(t, "redis:7", v)

	assert.Equal(t, []string{"redis-image", "with-docker"}, flags.Names())
}

func TestRunFlags_Force(t *testing.T) {
	t.Parallel()

	a := values.MustNewUnitID("A")
	b := values.MustNewUnitID("B")

	none := entities.NoFlags()
	assert.False(t, none.ForceApplies(a))
	assert.False(t, none.IsSet("force"))

	targeted := entities.NewRunFlagsBuilder().Force("B").Build()
	assert.False(t, targeted.ForceApplies(a))
	assert.True(t, targeted.ForceApplies(b))
	assert.True(t, targeted.IsSet("force"))
	assert.False(t, targeted.ForcesAll())
	assert.Equal(t, []string{"B"}, targeted.ForceTargets())

	all := entities.NewRunFlagsBuilder().ForceAll().Build()
	assert.True(t, all.ForceApplies(a))
	assert.True(t, all.ForceApplies(b))
	assert.True(t, all.ForcesAll())
	assert.Empty(t, all.ForceTargets())
}

func TestRunFlags_Set(t *testing.T) {
	t.Parallel()

	flags := entities.NewRunFlagsBuilder().
		Toggle(values.FlagNoDev, true).
		Extra("region", "eu").
		Build()

	set := flags.Set()
	assert.Equal(t, map[values.FlagName]string{
		values.FlagNoDev:          "",
		values.FlagName("region"): "eu",
	}, set)
}
