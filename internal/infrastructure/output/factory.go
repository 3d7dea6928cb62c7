// Package output renders run results, unit lists and ledger entries.
package output

import (
	"fmt"
	"io"
	"slices"

	"github.com/omniforge-dev/omniforge/internal/application/ports"
)

// Format names accepted by --format.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	// FormatIDs prints one unit ID per line, for piping into other commands.
	// It only applies to lists.
	FormatIDs = "ids"
)

// Ensure interface compliance
var _ ports.OutputFormatterFactory = (*FormatterFactory)(nil)

// formatsByReport lists the formats each report accepts, default first.
var formatsByReport = map[ports.Report][]string{
	ports.ReportRun:    {FormatTable, FormatJSON, FormatYAML},
	ports.ReportUnits:  {FormatTable, FormatJSON, FormatYAML, FormatIDs},
	ports.ReportLedger: {FormatTable, FormatJSON, FormatYAML, FormatIDs},
}

// FormatterFactory implements ports.OutputFormatterFactory.
type FormatterFactory struct{}

// NewFormatterFactory creates a new formatter factory.
func NewFormatterFactory() *FormatterFactory {
	return &FormatterFactory{}
}

// RunFormatter returns a formatter for run and plan results.
func (f *FormatterFactory) RunFormatter(format string, w io.Writer, options ports.FormatterOptions) (ports.OutputFormatter, error) {
	v, err := f.create(ports.ReportRun, format, w, options)
	if err != nil {
		return nil, err
	}
	return v.(ports.OutputFormatter), nil
}

// UnitListFormatter returns a formatter for the unit list.
func (f *FormatterFactory) UnitListFormatter(format string, w io.Writer, options ports.FormatterOptions) (ports.UnitListFormatter, error) {
	v, err := f.create(ports.ReportUnits, format, w, options)
	if err != nil {
		return nil, err
	}
	return v.(ports.UnitListFormatter), nil
}

// LedgerFormatter returns a formatter for ledger entries.
func (f *FormatterFactory) LedgerFormatter(format string, w io.Writer, options ports.FormatterOptions) (ports.LedgerListFormatter, error) {
	v, err := f.create(ports.ReportLedger, format, w, options)
	if err != nil {
		return nil, err
	}
	return v.(ports.LedgerListFormatter), nil
}

// SupportedFormats returns the format names a report accepts.
func (f *FormatterFactory) SupportedFormats(report ports.Report) []string {
	return slices.Clone(formatsByReport[report])
}

func (f *FormatterFactory) create(report ports.Report, format string, w io.Writer, options ports.FormatterOptions) (any, error) {
	supported := formatsByReport[report]
	if !slices.Contains(supported, format) {
		return nil, fmt.Errorf("unknown %s format: %s (supported: %v)", report, format, supported)
	}

	switch format {
	case FormatTable:
		t := NewTableFormatter(w)
		t.EnableColor = !options.NoColor
		return t, nil
	case FormatJSON:
		return NewJSONFormatter(w, options.Indent), nil
	case FormatYAML:
		return NewYAMLFormatter(w), nil
	default:
		return NewIDFormatter(w), nil
	}
}
