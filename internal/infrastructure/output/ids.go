package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/omniforge-dev/omniforge/internal/application/ports"
	"github.com/omniforge-dev/omniforge/internal/domain/entities"
)

var (
	_ ports.UnitListFormatter   = (*IDFormatter)(nil)
	_ ports.LedgerListFormatter = (*IDFormatter)(nil)
)

// IDFormatter writes bare unit IDs, one per line, so that
// `omniforge ledger list --format ids` can feed `ledger reset`.
type IDFormatter struct {
	writer io.Writer
}

// NewIDFormatter creates an ID list formatter.
func NewIDFormatter(w io.Writer) *IDFormatter {
	return &IDFormatter{writer: w}
}

// FormatUnits writes the unit IDs in schedule order.
func (f *IDFormatter) FormatUnits(units []*entities.UnitDescriptor) error {
	ids := make([]string, 0, len(units))
	for _, u := range units {
		ids = append(ids, u.ID().String())
	}
	return f.write(ids)
}

// FormatLedger writes the IDs of recorded units.
func (f *IDFormatter) FormatLedger(entries []entities.LedgerEntry) error {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.UnitID)
	}
	return f.write(ids)
}

func (f *IDFormatter) write(ids []string) error {
	bw := bufio.NewWriter(f.writer)
	for _, id := range ids {
		if _, err := fmt.Fprintln(bw, id); err != nil {
			return err
		}
	}
	return bw.Flush()
}
