// Package packages installs JavaScript dependencies through the project's
// package manager CLI.
package packages

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/omniforge-dev/omniforge/internal/application/ports"
	"github.com/omniforge-dev/omniforge/internal/domain/values"
)

// Ensure interface compliance
var _ ports.PackageManager = (*Manager)(nil)

// Command describes how one package manager adds dependencies.
type Command struct {
	Binary  string
	Add     []string
	DevFlag string
}

// commands maps supported manager names to their add invocation.
var commands = map[string]Command{
	"npm":  {Binary: "npm", Add: []string{"install"}, DevFlag: "--save-dev"},
	"pnpm": {Binary: "pnpm", Add: []string{"add"}, DevFlag: "-D"},
	"yarn": {Binary: "yarn", Add: []string{"add"}, DevFlag: "--dev"},
	"bun":  {Binary: "bun", Add: []string{"add"}, DevFlag: "-d"},
}

// Runner executes a command in dir. Replaced in tests.
type Runner func(ctx context.Context, dir string, stdout, stderr io.Writer, name string, args ...string) error

// Manager installs packages with an external package manager CLI.
type Manager struct {
	name    string
	command Command
	dir     string
	run     Runner
	output  io.Writer
	logger  *slog.Logger
}

// Option customizes a Manager.
type Option func(*Manager)

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(m *Manager) { m.run = r }
}

// WithOutput redirects the package manager's output (stderr by default).
func WithOutput(w io.Writer) Option {
	return func(m *Manager) { m.output = w }
}

// New creates a manager for one of the supported names, running in dir.
func New(name, dir string, logger *slog.Logger, opts ...Option) (*Manager, error) {
	cmd, ok := commands[name]
	if !ok {
		return nil, fmt.Errorf("unsupported package manager %q (supported: %s)", name, strings.Join(Supported(), ", "))
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		name:    name,
		command: cmd,
		dir:     dir,
		run:     execRunner,
		output:  os.Stderr,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Supported returns the manager names New accepts, sorted.
func Supported() []string {
	return []string{"bun", "npm", "pnpm", "yarn"}
}

// Name returns the manager name.
func (m *Manager) Name() string {
	return m.name
}

// Args returns the full argument list used to install pkgs.
func (m *Manager) Args(pkgs []values.PackageSpec, dev bool) []string {
	args := append([]string(nil), m.command.Add...)
	if dev {
		args = append(args, m.command.DevFlag)
	}
	for _, p := range pkgs {
		args = append(args, p.String())
	}
	return args
}

// Install runs the manager once for the whole batch.
func (m *Manager) Install(ctx context.Context, pkgs []values.PackageSpec, dev bool) error {
	if len(pkgs) == 0 {
		return nil
	}
	args := m.Args(pkgs, dev)
	m.logger.Debug("running package manager", "manager", m.name, "args", args, "dir", m.dir)

	if err := m.run(ctx, m.dir, m.output, m.output, m.command.Binary, args...); err != nil {
		return fmt.Errorf("%s %s: %w", m.command.Binary, strings.Join(args, " "), err)
	}
	return nil
}

func execRunner(ctx context.Context, dir string, stdout, stderr io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // G204: binary comes from a fixed table
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}
