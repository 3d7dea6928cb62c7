package output

import (
	"encoding/json"
	"io"

	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/omniforge-dev/omniforge/internal/domain/execution"
)

// JSONFormatter formats reports as JSON.
type JSONFormatter struct {
	writer io.Writer
	indent bool
}

// NewJSONFormatter creates a new JSON formatter.
// If indent is true, the output will be pretty-printed with indentation.
func NewJSONFormatter(w io.Writer, indent bool) *JSONFormatter {
	return &JSONFormatter{
		writer: w,
		indent: indent,
	}
}

// Format writes the run result as JSON.
func (f *JSONFormatter) Format(result *execution.RunResult) error {
	return f.write(result)
}

// FormatUnits writes the unit list as JSON.
func (f *JSONFormatter) FormatUnits(units []*entities.UnitDescriptor) error {
	return f.write(unitList{Units: toUnitViews(units)})
}

// FormatLedger writes ledger entries as JSON.
func (f *JSONFormatter) FormatLedger(entries []entities.LedgerEntry) error {
	return f.write(toLedgerList(entries))
}

func (f *JSONFormatter) write(v any) error {
	var data []byte
	var err error

	if f.indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = f.writer.Write(data)
	if err != nil {
		return err
	}

	// Add newline for better terminal output
	_, err = f.writer.Write([]byte("\n"))
	return err
}
