package entities

import (
	"fmt"
	"slices"
	"time"
)

// LedgerVersion is the current on-disk ledger format version.
const LedgerVersion = 1

// LedgerStatusSucceeded is the only status ever recorded; absence means
// the unit has not yet succeeded.
const LedgerStatusSucceeded = "succeeded"

// Ledger is the aggregate root for the record of completed units.
//
// Invariants:
// - Version must be LedgerVersion
// - A unit ID appears at most once (writes overwrite)
// - Every entry has status succeeded and a timestamp
type Ledger struct {
	Version int                    `yaml:"ledger_version" json:"ledger_version"`
	Updated time.Time              `yaml:"updated,omitempty" json:"updated,omitempty"`
	Entries map[string]LedgerEntry `yaml:"units" json:"units"`
}

// LedgerEntry records that a unit succeeded.
type LedgerEntry struct {
	UnitID      string    `yaml:"-" json:"unit_id"`
	Status      string    `yaml:"status" json:"status"`
	SucceededAt time.Time `yaml:"succeeded_at" json:"succeeded_at"`
	RunID       string    `yaml:"run_id,omitempty" json:"run_id,omitempty"`
}

// NewLedger creates an empty ledger with the current version.
func NewLedger() *Ledger {
	return &Ledger{
		Version: LedgerVersion,
		Entries: make(map[string]LedgerEntry),
	}
}

// MarkSucceeded records (or overwrites) a success for the unit.
func (l *Ledger) MarkSucceeded(unitID, runID string, at time.Time) error {
	if unitID == "" {
		return fmt.Errorf("ledger: unit ID is required")
	}
	if at.IsZero() {
		return fmt.Errorf("ledger: timestamp is required for %s", unitID)
	}
	if l.Entries == nil {
		l.Entries = make(map[string]LedgerEntry)
	}
	l.Entries[unitID] = LedgerEntry{
		UnitID:      unitID,
		Status:      LedgerStatusSucceeded,
		SucceededAt: at.UTC(),
		RunID:       runID,
	}
	l.Updated = at.UTC()
	return nil
}

// Get returns the entry for a unit, if present.
func (l *Ledger) Get(unitID string) (LedgerEntry, bool) {
	if l.Entries == nil {
		return LedgerEntry{}, false
	}
	e, ok := l.Entries[unitID]
	if ok {
		e.UnitID = unitID
	}
	return e, ok
}

// HasSucceeded reports whether the unit has a success entry.
func (l *Ledger) HasSucceeded(unitID string) bool {
	e, ok := l.Get(unitID)
	return ok && e.Status == LedgerStatusSucceeded
}

// Remove deletes entries. With no IDs it clears the ledger. It returns the
// IDs that were actually removed.
func (l *Ledger) Remove(unitIDs ...string) []string {
	var removed []string
	if len(unitIDs) == 0 {
		for id := range l.Entries {
			removed = append(removed, id)
		}
		l.Entries = make(map[string]LedgerEntry)
		slices.Sort(removed)
		return removed
	}
	for _, id := range unitIDs {
		if _, ok := l.Entries[id]; ok {
			delete(l.Entries, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// List returns all entries sorted by unit ID.
func (l *Ledger) List() []LedgerEntry {
	out := make([]LedgerEntry, 0, len(l.Entries))
	for id, e := range l.Entries {
		e.UnitID = id
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b LedgerEntry) int {
		switch {
		case a.UnitID < b.UnitID:
			return -1
		case a.UnitID > b.UnitID:
			return 1
		}
		return 0
	})
	return out
}

// Len returns the number of recorded units.
func (l *Ledger) Len() int {
	return len(l.Entries)
}

// Validate checks ledger invariants.
func (l *Ledger) Validate() error {
	if l.Version != LedgerVersion {
		return fmt.Errorf("unsupported ledger version: %d", l.Version)
	}
	for id, e := range l.Entries {
		if id == "" {
			return fmt.Errorf("ledger entry with empty unit ID")
		}
		if e.Status != LedgerStatusSucceeded {
			return fmt.Errorf("unit %q: unknown status %q", id, e.Status)
		}
		if e.SucceededAt.IsZero() {
			return fmt.Errorf("unit %q: succeeded_at is required", id)
		}
	}
	return nil
}
