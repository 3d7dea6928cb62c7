// Package units turns unit scripts on disk into runnable units.
package units

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"

	apperrors "github.com/omniforge-dev/omniforge/internal/application/errors"
	"github.com/omniforge-dev/omniforge/internal/application/ports"
	"github.com/omniforge-dev/omniforge/internal/domain/values"
)

// Environment variables every script receives in addition to its settings.
const (
	EnvRunID       = "OMNIFORGE_RUN_ID"
	EnvUnitID      = "OMNIFORGE_UNIT_ID"
	EnvPhase       = "OMNIFORGE_PHASE"
	EnvProjectRoot = "OMNIFORGE_PROJECT_ROOT"
)

// Ensure interface compliance
var _ ports.Action = (*ScriptAction)(nil)

// ScriptAction runs a unit file with a shell, in the project root.
type ScriptAction struct {
	Shell  string
	Path   string
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes the script. A non-zero exit becomes a unit execution
// failure carrying the exit code.
func (a *ScriptAction) Run(ctx context.Context, rc *ports.RunContext) error {
	path, err := filepath.Abs(a.Path)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, a.Shell, path) //nolint:gosec // G204: shell and script are project-configured
	cmd.Dir = rc.ProjectRoot
	cmd.Env = Environ(os.Environ(), rc)
	cmd.Stdout = a.Stdout
	cmd.Stderr = a.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stderr
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	rc.Logger.Debug("executing unit script", "shell", a.Shell, "path", path)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return apperrors.NewUnitExecutionFailureError(rc.Unit.ID().String(), exitErr.ExitCode(), err)
		}
		return apperrors.NewUnitExecutionFailureError(rc.Unit.ID().String(), -1, fmt.Errorf("starting %s: %w", a.Shell, err))
	}
	return nil
}

// Environ builds a script environment: base, then resolved settings, then
// run metadata and one OMNIFORGE_FLAG_* variable per set flag. Later
// entries win when the same name appears twice.
func Environ(base []string, rc *ports.RunContext) []string {
	env := slices.Clone(base)

	keys := make([]string, 0, len(rc.Settings))
	for k := range rc.Settings {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		env = append(env, k+"="+rc.Settings[k].Value)
	}

	env = append(env,
		EnvRunID+"="+rc.RunID.String(),
		EnvUnitID+"="+rc.Unit.ID().String(),
		EnvPhase+"="+strconv.Itoa(rc.Unit.Phase().Int()),
		EnvProjectRoot+"="+rc.ProjectRoot,
	)

	if rc.Flags != nil {
		set := rc.Flags.Set()
		for _, name := range rc.Flags.Names() {
			flag := values.FlagName(name)
			value := set[flag]
			if value == "" {
				value = "1"
			}
			env = append(env, flag.EnvName()+"="+value)
		}
	}
	return env
}
