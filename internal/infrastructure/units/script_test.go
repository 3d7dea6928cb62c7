package units

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/omniforge-dev/omniforge/internal/application/errors"
	"github.com/omniforge-dev/omniforge/internal/application/ports"
	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/omniforge-dev/omniforge/internal/domain/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runContext(t *testing.T, root string) *ports.RunContext {
	t.Helper()
	unit := entities.MustNewUnitDescriptor(entities.UnitFields{ID: "cache-layer", Phase: 3})
	flags := entities.NewRunFlagsBuilder().
		Toggle(values.FlagNoVerify, true).
		Extra("region", "eu-west-1").
		Extra("with-seed", "").
		Build()
	return &ports.RunContext{
		RunID: values.MustParseRunID("8f14e45f-ceea-467f-a8fa-0a1b2c3d4e5f"),
		Unit:  unit,
		Flags: flags,
		Settings: map[string]values.Setting{
			"REDIS_PORT": {Key: "REDIS_PORT", Value: "6380", Source: values.SettingSourceOverride},
		},
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		ProjectRoot: root,
	}
}

func TestEnviron(t *testing.T) {
	t.Parallel()
	rc := runContext(t, "/project")

	env := Environ([]string{"PATH=/usr/bin", "REDIS_PORT=1"}, rc)

	assert.Equal(t, []string{
		"PATH=/usr/bin",
		"REDIS_PORT=1",
		"REDIS_PORT=6380",
		"OMNIFORGE_RUN_ID=8f14e45f-ceea-467f-a8fa-0a1b2c3d4e5f",
		"OMNIFORGE_UNIT_ID=cache-layer",
		"OMNIFORGE_PHASE=3",
		"OMNIFORGE_PROJECT_ROOT=/project",
		"OMNIFORGE_FLAG_NO_VERIFY=1",
		"OMNIFORGE_FLAG_REGION=eu-west-1",
		"OMNIFORGE_FLAG_WITH_SEED=1",
	}, env)
}

func TestScriptAction_RunsInProjectRoot(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	script := filepath.Join(root, "unit.sh")
	require.NoError(t, os.WriteFile(script, []byte("pwd\necho \"port=$REDIS_PORT unit=$OMNIFORGE_UNIT_ID\"\n"), 0o600))

	var out bytes.Buffer
	action := &ScriptAction{Shell: "sh", Path: script, Stdout: &out, Stderr: &out}
	require.NoError(t, action.Run(context.Background(), runContext(t, root)))

	wantRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	gotRoot, err := filepath.EvalSymlinks(string(lines[0]))
	require.NoError(t, err)
	assert.Equal(t, wantRoot, gotRoot)
	assert.Equal(t, "port=6380 unit=cache-layer", string(lines[1]))
}

func TestScriptAction_NonZeroExit(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	script := filepath.Join(root, "fail.sh")
	require.NoError(t, os.WriteFile(script, []byte("echo nope >&2\nexit 3\n"), 0o600))

	var out bytes.Buffer
	action := &ScriptAction{Shell: "sh", Path: script, Stdout: &out, Stderr: &out}
	err := action.Run(context.Background(), runContext(t, root))

	var failure *apperrors.UnitExecutionFailureError
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, 3, failure.ExitCode)
	assert.Equal(t, "cache-layer", failure.UnitID)
	assert.Equal(t, "nope\n", out.String())
}

func TestScriptAction_MissingShell(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	action := &ScriptAction{Shell: "definitely-not-a-shell-xyz", Path: filepath.Join(root, "x.sh")}
	err := action.Run(context.Background(), runContext(t, root))

	var failure *apperrors.UnitExecutionFailureError
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, -1, failure.ExitCode)
}
