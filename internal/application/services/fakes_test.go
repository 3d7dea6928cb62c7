package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/omniforge-dev/omniforge/internal/application/ports"
	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/omniforge-dev/omniforge/internal/domain/values"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeLoader returns a fixed unit list.
type fakeLoader struct {
	units []ports.Unit
	err   error
}

func (l *fakeLoader) LoadUnits(context.Context) ([]ports.Unit, error) {
	return l.units, l.err
}

// fakeLedger is an in-memory ledger with a controllable clock and
// injectable write failures.
type fakeLedger struct {
	mu       sync.Mutex
	entries  map[string]entities.LedgerEntry
	clock    time.Time
	writes   int
	failNext error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		entries: make(map[string]entities.LedgerEntry),
		clock:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (l *fakeLedger) HasSucceeded(_ context.Context, id values.UnitID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.entries[id.String()]
	return ok, nil
}

func (l *fakeLedger) MarkSucceeded(_ context.Context, id values.UnitID, runID values.RunID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failNext != nil {
		err := l.failNext
		l.failNext = nil
		return err
	}
	l.clock = l.clock.Add(time.Minute)
	l.writes++
	l.entries[id.String()] = entities.LedgerEntry{
		UnitID:      id.String(),
		Status:      entities.LedgerStatusSucceeded,
		SucceededAt: l.clock,
		RunID:       runID.String(),
	}
	return nil
}

func (l *fakeLedger) Entries(context.Context) ([]entities.LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]entities.LedgerEntry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b entities.LedgerEntry) int {
		if a.UnitID < b.UnitID {
			return -1
		}
		if a.UnitID > b.UnitID {
			return 1
		}
		return 0
	})
	return out, nil
}

func (l *fakeLedger) Reset(_ context.Context, ids ...string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var removed []string
	for _, id := range ids {
		if _, ok := l.entries[id]; ok {
			delete(l.entries, id)
			removed = append(removed, id)
		}
	}
	return removed, nil
}

func (l *fakeLedger) entry(id string) (entities.LedgerEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[id]
	return e, ok
}

// mapResolver resolves from a fixed map.
type mapResolver map[string]string

func (m mapResolver) Resolve(key string) (values.Setting, bool) {
	v, ok := m[key]
	if !ok {
		return values.Setting{}, false
	}
	return values.Setting{Key: key, Value: v, Source: values.SettingSourceDefault}, true
}

type fakeSettings struct {
	resolver ports.SettingsResolver
	builds   int
}

func (s *fakeSettings) NewResolver(context.Context) (ports.SettingsResolver, error) {
	s.builds++
	return s.resolver, nil
}

// installCall records one package manager invocation.
type installCall struct {
	packages []string
	dev      bool
}

type fakeManager struct {
	calls []installCall
	err   error
}

func (m *fakeManager) Name() string { return "fake" }

func (m *fakeManager) Install(_ context.Context, packages []values.PackageSpec, dev bool) error {
	names := make([]string, 0, len(packages))
	for _, p := range packages {
		names = append(names, p.String())
	}
	m.calls = append(m.calls, installCall{packages: names, dev: dev})
	return m.err
}

type nopReporter struct{}

func (nopReporter) Step(*entities.UnitDescriptor, string, ...any)    {}
func (nopReporter) Skip(*entities.UnitDescriptor, values.SkipReason) {}
func (nopReporter) OK(*entities.UnitDescriptor, time.Duration)       {}
func (nopReporter) Error(*entities.UnitDescriptor, error)            {}

// tracker records which unit bodies ran, in order.
type tracker struct {
	ran     []string
	failFor map[string]error
	after   func(id string)
}

func newTracker() *tracker {
	return &tracker{failFor: make(map[string]error)}
}

func (tr *tracker) action(id string) ports.Action {
	return ports.ActionFunc(func(_ context.Context, rc *ports.RunContext) error {
		tr.ran = append(tr.ran, rc.Unit.ID().String())
		if tr.after != nil {
			tr.after(id)
		}
		return tr.failFor[id]
	})
}

func (tr *tracker) unit(f entities.UnitFields) ports.Unit {
	return ports.Unit{
		Descriptor: entities.MustNewUnitDescriptor(f),
		Action:     tr.action(f.ID),
	}
}

var errBoom = errors.New("boom")
