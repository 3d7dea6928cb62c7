package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/omniforge-dev/omniforge/internal/domain/execution"
	"github.com/omniforge-dev/omniforge/internal/domain/services"
	"github.com/omniforge-dev/omniforge/internal/domain/values"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

const ruleWidth = 72

// TableFormatter formats reports as human-readable text.
type TableFormatter struct {
	writer      io.Writer
	EnableColor bool
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{
		writer:      w,
		EnableColor: true, // Default to true, caller can disable
	}
}

// colorize returns the string wrapped in ANSI color codes if enabled.
func (f *TableFormatter) colorize(text, code string) string {
	if !f.EnableColor {
		return text
	}
	return code + text + colorReset
}

func (f *TableFormatter) rule() string {
	return f.colorize(strings.Repeat("─", ruleWidth), colorGray)
}

// Format writes the run result with one line per scheduled unit.
//
//nolint:errcheck // Table formatting errors are non-critical (best-effort terminal output)
func (f *TableFormatter) Format(result *execution.RunResult) error {
	fmt.Fprintln(f.writer, f.rule())
	title := "Run: " + result.RunID.String()
	if result.DryRun {
		title += " (dry-run)"
	}
	fmt.Fprintln(f.writer, f.colorize(title, colorBold))
	fmt.Fprintf(f.writer, "Started:  %s\n", result.StartTime.Format(time.RFC3339))
	fmt.Fprintf(f.writer, "Duration: %s\n", result.Duration.Round(time.Millisecond))
	if len(result.Flags) > 0 {
		fmt.Fprintf(f.writer, "Flags:    %s\n", strings.Join(result.Flags, " "))
	}
	fmt.Fprintln(f.writer, f.rule())

	if len(result.Units) == 0 {
		fmt.Fprintln(f.writer, "No units scheduled.")
		return nil
	}

	for _, u := range result.Units {
		f.formatUnit(u)
	}

	fmt.Fprintln(f.writer, f.rule())
	f.formatSummary(result.Summary)
	return nil
}

// formatUnit formats a single unit result.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatUnit(u execution.UnitResult) {
	symbol, color := f.getStateInfo(u.State)
	label := u.State.Label(u.SkipReason)
	if u.Forced && u.State != values.UnitStateSkipped {
		label += " (forced)"
	}

	fmt.Fprintf(f.writer, "%s [%d] %s  %s", f.colorize(symbol, color), u.Phase, f.colorize(u.ID, color), label)
	if u.Duration > 0 {
		fmt.Fprintf(f.writer, "  %s", u.Duration.Round(time.Millisecond))
	}
	fmt.Fprintln(f.writer)

	if len(u.Installed) > 0 {
		fmt.Fprintf(f.writer, "    installed: %s\n", strings.Join(u.Installed, ", "))
	}
	if len(u.MissingSettings) > 0 {
		fmt.Fprintf(f.writer, "    %s: %s\n", f.colorize("missing settings", colorYellow), strings.Join(u.MissingSettings, ", "))
	}
	if u.Error != "" {
		fmt.Fprintf(f.writer, "    %s: [%s] %s\n", f.colorize("error", colorRed), u.ErrorKind, u.Error)
	}
}

// formatSummary formats the summary statistics.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatSummary(s execution.RunSummary) {
	fmt.Fprintf(f.writer, "Units: %d total, %s succeeded, %s skipped, %s failed, %d pending\n",
		s.TotalUnits,
		f.colorize(fmt.Sprint(s.SucceededUnits), colorGreen),
		f.colorize(fmt.Sprint(s.SkippedUnits), colorGray),
		f.colorize(fmt.Sprint(s.FailedUnits), colorRed),
		s.PendingUnits,
	)
}

// getStateInfo returns a symbol and color for the given state.
func (f *TableFormatter) getStateInfo(state values.UnitState) (string, string) {
	switch state {
	case values.UnitStateSucceeded:
		return "✓", colorGreen
	case values.UnitStateFailed:
		return "✗", colorRed
	case values.UnitStateSkipped:
		return "⊘", colorGray
	case values.UnitStateRunning:
		return "…", colorYellow
	default:
		return "·", colorReset
	}
}

// FormatUnits writes the schedule as one section per phase.
//
//nolint:errcheck // tabwriter buffers; the error surfaces on Flush
func (f *TableFormatter) FormatUnits(units []*entities.UnitDescriptor) error {
	if len(units) == 0 {
		_, err := fmt.Fprintln(f.writer, "No units found.")
		return err
	}

	tw := tabwriter.NewWriter(f.writer, 0, 0, 2, ' ', 0)
	for _, g := range services.NewPhaseScheduler().Group(units) {
		title := fmt.Sprintf("Phase %d", g.Phase)
		if g.Name != "" {
			title += " (" + g.Name + ")"
		}
		fmt.Fprintln(tw, f.colorize(title, colorBold))
		fmt.Fprintln(tw, "  ID\tNAME\tPROFILES\tPACKAGES")
		for _, u := range g.Units {
			var pkgs []string
			for _, p := range u.Packages() {
				pkgs = append(pkgs, p.String())
			}
			for _, p := range u.DevPackages() {
				pkgs = append(pkgs, p.String()+" (dev)")
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n",
				u.ID(), orDash(u.Name()), orDash(strings.Join(u.Profiles(), ",")), orDash(strings.Join(pkgs, ", ")))
		}
	}
	return tw.Flush()
}

// FormatLedger writes one row per ledger entry.
func (f *TableFormatter) FormatLedger(entries []entities.LedgerEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(f.writer, "Ledger is empty.")
		return err
	}

	tw := tabwriter.NewWriter(f.writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "UNIT\tSTATUS\tSUCCEEDED AT\tRUN")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.UnitID, e.Status, e.SucceededAt.Format(time.RFC3339), orDash(e.RunID))
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
