// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"
	"io"
	"time"

	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/omniforge-dev/omniforge/internal/domain/execution"
	"github.com/omniforge-dev/omniforge/internal/domain/values"
)

// Action is the executable body of a unit. A nil error is success.
type Action interface {
	Run(ctx context.Context, rc *RunContext) error
}

// ActionFunc adapts a function to Action.
type ActionFunc func(ctx context.Context, rc *RunContext) error

// Run calls f.
func (f ActionFunc) Run(ctx context.Context, rc *RunContext) error {
	return f(ctx, rc)
}

// Unit pairs a descriptor with its body.
type Unit struct {
	Descriptor *entities.UnitDescriptor
	Action     Action
}

// UnitLoader discovers and parses every unit in the project.
// Load-time errors (malformed metadata, duplicate identity) are returned
// before any unit could run.
type UnitLoader interface {
	LoadUnits(ctx context.Context) ([]Unit, error)
}

// SettingsResolver resolves named settings from layered sources.
// Implementations must be free of side effects.
type SettingsResolver interface {
	// Resolve returns the setting for key and whether any layer had it.
	Resolve(key string) (values.Setting, bool)
}

// SettingsProvider builds a fresh resolver for one run. Sources are
// re-read every time so nothing is cached across runs.
type SettingsProvider interface {
	NewResolver(ctx context.Context) (SettingsResolver, error)
}

// PackageManager performs the actual package installation.
type PackageManager interface {
	// Name identifies the manager in logs (npm, pnpm, ...).
	Name() string

	// Install installs packages as runtime or development dependencies.
	Install(ctx context.Context, packages []values.PackageSpec, dev bool) error
}

// PackageInstaller is the run-scoped, deduplicating installer units see.
type PackageInstaller interface {
	// Install submits the packages not yet seen in this run and returns
	// the names that were newly submitted.
	Install(ctx context.Context, unitID values.UnitID, packages []values.PackageSpec, dev bool) ([]string, error)
}

// Reporter emits step/skip/ok/error progress for units.
type Reporter interface {
	Step(unit *entities.UnitDescriptor, msg string, args ...any)
	Skip(unit *entities.UnitDescriptor, reason values.SkipReason)
	OK(unit *entities.UnitDescriptor, elapsed time.Duration)
	Error(unit *entities.UnitDescriptor, err error)
}

// OutputFormatter formats run results.
type OutputFormatter interface {
	Format(result *execution.RunResult) error
}

// UnitListFormatter formats the scheduled unit list.
type UnitListFormatter interface {
	FormatUnits(units []*entities.UnitDescriptor) error
}

// LedgerListFormatter formats ledger entries.
type LedgerListFormatter interface {
	FormatLedger(entries []entities.LedgerEntry) error
}

// FormatterOptions tunes formatter output.
type FormatterOptions struct {
	Indent  bool
	NoColor bool
}

// Report names one kind of CLI output. Each kind accepts its own set of
// formats.
type Report string

const (
	// ReportRun is the result of run or plan
	ReportRun Report = "run"
	// ReportUnits is the scheduled unit list
	ReportUnits Report = "units"
	// ReportLedger is the list of ledger entries
	ReportLedger Report = "ledger"
)

// OutputFormatterFactory creates formatters by report kind and format name.
type OutputFormatterFactory interface {
	RunFormatter(format string, writer io.Writer, options FormatterOptions) (OutputFormatter, error)
	UnitListFormatter(format string, writer io.Writer, options FormatterOptions) (UnitListFormatter, error)
	LedgerFormatter(format string, writer io.Writer, options FormatterOptions) (LedgerListFormatter, error)
	SupportedFormats(report Report) []string
}
