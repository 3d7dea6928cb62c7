package output

import (
	"io"

	"github.com/goccy/go-yaml"
	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/omniforge-dev/omniforge/internal/domain/execution"
)

// YAMLFormatter formats reports as YAML.
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes the run result as YAML.
func (f *YAMLFormatter) Format(result *execution.RunResult) error {
	return f.encode(result)
}

// FormatUnits writes the unit list as YAML.
func (f *YAMLFormatter) FormatUnits(units []*entities.UnitDescriptor) error {
	return f.encode(unitList{Units: toUnitViews(units)})
}

// FormatLedger writes ledger entries as YAML.
func (f *YAMLFormatter) FormatLedger(entries []entities.LedgerEntry) error {
	return f.encode(toLedgerList(entries))
}

func (f *YAMLFormatter) encode(v any) error {
	encoder := yaml.NewEncoder(f.writer, yaml.Indent(2))

	if err := encoder.Encode(v); err != nil {
		return err
	}

	return encoder.Close()
}
