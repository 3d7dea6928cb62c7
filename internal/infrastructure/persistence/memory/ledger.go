// Package memory provides in-memory implementations of application ports.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/omniforge-dev/omniforge/internal/application/ports"
	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/omniforge-dev/omniforge/internal/domain/values"
)

// Ensure interface compliance
var _ ports.Ledger = (*Ledger)(nil)

// Ledger is an in-memory implementation of ports.Ledger.
// Useful for testing and for previews that must not touch the project.
type Ledger struct {
	ledger *entities.Ledger
	now    func() time.Time
	mu     sync.RWMutex
}

// NewLedger creates an empty in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{
		ledger: entities.NewLedger(),
		now:    time.Now,
	}
}

// NewLedgerWithClock creates an empty ledger using now for timestamps.
func NewLedgerWithClock(now func() time.Time) *Ledger {
	l := NewLedger()
	l.now = now
	return l
}

// HasSucceeded reports whether the unit has a success entry.
func (l *Ledger) HasSucceeded(_ context.Context, id values.UnitID) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ledger.HasSucceeded(id.String()), nil
}

// MarkSucceeded records (or overwrites) the unit's success entry.
func (l *Ledger) MarkSucceeded(_ context.Context, id values.UnitID, runID values.RunID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ledger.MarkSucceeded(id.String(), runID.String(), l.now())
}

// Entries returns every entry, sorted by unit ID.
func (l *Ledger) Entries(_ context.Context) ([]entities.LedgerEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ledger.List(), nil
}

// Reset removes the named entries, or all of them when ids is empty.
func (l *Ledger) Reset(_ context.Context, ids ...string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ledger.Remove(ids...), nil
}
