package ports

import (
	"context"

	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/omniforge-dev/omniforge/internal/domain/values"
)

// Ledger is the durable record of which units already succeeded.
// This is a PORT - abstracts the file system or other storage.
//
// MarkSucceeded must be atomic with respect to interrupted processes: after
// a crash the ledger holds either the previous or the new content, never a
// partial write. Concurrent writers from different processes must not
// interleave.
type Ledger interface {
	// HasSucceeded reports whether the unit has a success entry.
	HasSucceeded(ctx context.Context, id values.UnitID) (bool, error)

	// MarkSucceeded records (or overwrites) the unit's success entry.
	MarkSucceeded(ctx context.Context, id values.UnitID, runID values.RunID) error

	// Entries returns every entry, sorted by unit ID.
	Entries(ctx context.Context) ([]entities.LedgerEntry, error)

	// Reset removes the named entries, or all of them when ids is empty.
	// It returns the IDs actually removed.
	Reset(ctx context.Context, ids ...string) ([]string, error)
}
