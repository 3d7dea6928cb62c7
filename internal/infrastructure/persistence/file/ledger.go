// Package file provides file-backed implementations of application ports.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/omniforge-dev/omniforge/internal/application/ports"
	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/omniforge-dev/omniforge/internal/domain/values"
)

// Ensure interface compliance
var _ ports.Ledger = (*Ledger)(nil)

const (
	defaultLockTimeout = 10 * time.Second
	lockPollInterval   = 50 * time.Millisecond
)

// Options configures a file ledger.
type Options struct {
	// LockTimeout bounds how long a writer waits for another holder.
	LockTimeout time.Duration
	// Now overrides the clock used for timestamps.
	Now    func() time.Time
	Logger *slog.Logger
}

// Ledger persists unit successes as a YAML document.
//
// Reads never create the file or its directory. Every write takes an
// exclusive OS lock on a file next to the ledger, re-reads the current content,
// applies the change and replaces the file atomically.
type Ledger struct {
	path        string
	lockTimeout time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

// NewLedger creates a ledger stored at path.
func NewLedger(path string, opts Options) *Ledger {
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = defaultLockTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Ledger{
		path:        path,
		lockTimeout: opts.LockTimeout,
		now:         opts.Now,
		logger:      opts.Logger,
	}
}

// Path returns the ledger file location.
func (l *Ledger) Path() string {
	return l.path
}

// HasSucceeded reports whether the unit has a success entry.
func (l *Ledger) HasSucceeded(_ context.Context, id values.UnitID) (bool, error) {
	ledger, err := l.read()
	if err != nil {
		return false, err
	}
	return ledger.HasSucceeded(id.String()), nil
}

// MarkSucceeded records (or overwrites) the unit's success entry.
func (l *Ledger) MarkSucceeded(ctx context.Context, id values.UnitID, runID values.RunID) error {
	return l.update(ctx, func(ledger *entities.Ledger) (bool, error) {
		if err := ledger.MarkSucceeded(id.String(), runID.String(), l.now()); err != nil {
			return false, err
		}
		return true, nil
	})
}

// Entries returns every entry, sorted by unit ID.
func (l *Ledger) Entries(_ context.Context) ([]entities.LedgerEntry, error) {
	ledger, err := l.read()
	if err != nil {
		return nil, err
	}
	return ledger.List(), nil
}

// Reset removes the named entries, or all of them when ids is empty.
func (l *Ledger) Reset(ctx context.Context, ids ...string) ([]string, error) {
	if _, err := os.Stat(l.path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	var removed []string
	err := l.update(ctx, func(ledger *entities.Ledger) (bool, error) {
		removed = ledger.Remove(ids...)
		return len(removed) > 0, nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// read loads the ledger. A missing file is an empty ledger.
func (l *Ledger) read() (*entities.Ledger, error) {
	//nolint:gosec // G304: path comes from project configuration
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entities.NewLedger(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger %s: %w", l.path, err)
	}
	return decode(l.path, data)
}

func decode(path string, data []byte) (*entities.Ledger, error) {
	ledger := entities.NewLedger()
	if len(data) == 0 {
		return ledger, nil
	}
	if err := yaml.Unmarshal(data, ledger); err != nil {
		return nil, fmt.Errorf("failed to parse ledger %s: %w", path, err)
	}
	if ledger.Entries == nil {
		ledger.Entries = make(map[string]entities.LedgerEntry)
	}
	if err := ledger.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ledger %s: %w", path, err)
	}
	return ledger, nil
}

// update runs fn on the freshest ledger content under the write lock and
// persists the result when fn reports a change.
func (l *Ledger) update(ctx context.Context, fn func(*entities.Ledger) (bool, error)) error {
	//nolint:gosec // G301: ledger directory lives inside the project
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	lock, err := l.acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			l.logger.Warn("failed to release ledger lock", "path", lock.Path(), "error", err)
		}
	}()

	ledger, err := l.read()
	if err != nil {
		return err
	}
	changed, err := fn(ledger)
	if err != nil || !changed {
		return err
	}

	data, err := yaml.MarshalWithOptions(ledger, yaml.IndentSequence(true))
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}
	if err := writeFileAtomic(l.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write ledger %s: %w", l.path, err)
	}
	l.logger.Debug("ledger written", "path", l.path, "units", ledger.Len())
	return nil
}
