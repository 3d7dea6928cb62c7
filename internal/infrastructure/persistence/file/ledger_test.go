package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/omniforge-dev/omniforge/internal/domain/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T, opts Options) (*Ledger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".omniforge", "ledger.yaml")
	return NewLedger(path, opts), path
}

func TestLedger_ReadsDoNotCreateFiles(t *testing.T) {
	t.Parallel()
	ledger, path := newTestLedger(t, Options{})
	ctx := context.Background()

	ok, err := ledger.HasSucceeded(ctx, values.MustNewUnitID("redis-setup"))
	require.NoError(t, err)
	assert.False(t, ok)

	entries, err := ledger.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	removed, err := ledger.Reset(ctx)
	require.NoError(t, err)
	assert.Empty(t, removed)

	_, err = os.Stat(filepath.Dir(path))
	assert.True(t, os.IsNotExist(err), "ledger directory must not be created by reads")
}

func TestLedger_MarkSucceededPersists(t *testing.T) {
	t.Parallel()
	clock := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	ledger, path := newTestLedger(t, Options{Now: func() time.Time { return clock }})
	ctx := context.Background()

	runID := values.NewRunID()
	require.NoError(t, ledger.MarkSucceeded(ctx, values.MustNewUnitID("redis-setup"), runID))

	// A fresh instance sees the write.
	reopened := NewLedger(path, Options{})
	ok, err := reopened.HasSucceeded(ctx, values.MustNewUnitID("redis-setup"))
	require.NoError(t, err)
	assert.True(t, ok)

	entries, err := reopened.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "redis-setup", entries[0].UnitID)
	assert.Equal(t, "succeeded", entries[0].Status)
	assert.True(t, clock.Equal(entries[0].SucceededAt))
	assert.Equal(t, runID.String(), entries[0].RunID)

	other := flock.New(path + ".lock")
	locked, err := other.TryLock()
	require.NoError(t, err)
	assert.True(t, locked, "lock must be released")
	require.NoError(t, other.Unlock())
}

func TestLedger_MarkSucceededOverwrites(t *testing.T) {
	t.Parallel()
	clock := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	ledger, _ := newTestLedger(t, Options{Now: func() time.Time { return clock }})
	ctx := context.Background()
	id := values.MustNewUnitID("a")

	require.NoError(t, ledger.MarkSucceeded(ctx, id, values.NewRunID()))
	clock = clock.Add(time.Hour)
	require.NoError(t, ledger.MarkSucceeded(ctx, id, values.NewRunID()))

	entries, err := ledger.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, clock.Equal(entries[0].SucceededAt))
}

func TestLedger_Reset(t *testing.T) {
	t.Parallel()
	ledger, _ := newTestLedger(t, Options{})
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, ledger.MarkSucceeded(ctx, values.MustNewUnitID(id), values.NewRunID()))
	}

	removed, err := ledger.Reset(ctx, "b", "missing")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, removed)

	removed, err = ledger.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, removed)

	entries, err := ledger.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLedger_LeftoverTempFileIgnored(t *testing.T) {
	t.Parallel()
	ledger, path := newTestLedger(t, Options{})
	ctx := context.Background()
	require.NoError(t, ledger.MarkSucceeded(ctx, values.MustNewUnitID("a"), values.NewRunID()))

	// Simulates a crash between temp write and rename.
	require.NoError(t, os.WriteFile(path+".tmp.12345", []byte("ledger_version: 1\nunits: {b"), 0o600))

	ok, err := ledger.HasSucceeded(ctx, values.MustNewUnitID("a"))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = ledger.HasSucceeded(ctx, values.MustNewUnitID("b"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLedger_CorruptFileIsError(t *testing.T) {
	t.Parallel()
	ledger, path := newTestLedger(t, Options{})
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("ledger_version: 7\nunits: {}\n"), 0o600))

	_, err := ledger.HasSucceeded(context.Background(), values.MustNewUnitID("a"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported ledger version")
}

func TestLedger_HeldLockTimesOut(t *testing.T) {
	t.Parallel()
	ledger, path := newTestLedger(t, Options{LockTimeout: 150 * time.Millisecond})
	holdLock(t, path)

	err := ledger.MarkSucceeded(context.Background(), values.MustNewUnitID("a"), values.NewRunID())
	require.ErrorIs(t, err, ErrLockTimeout)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no write may happen without the lock")
}

func TestLedger_WaitsForHolderToRelease(t *testing.T) {
	t.Parallel()
	ledger, path := newTestLedger(t, Options{LockTimeout: 5 * time.Second})
	holder := holdLock(t, path)

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = holder.Unlock()
	}()

	require.NoError(t, ledger.MarkSucceeded(context.Background(), values.MustNewUnitID("a"), values.NewRunID()))
	ok, err := ledger.HasSucceeded(context.Background(), values.MustNewUnitID("a"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLedger_LeftoverLockFileDoesNotBlock(t *testing.T) {
	t.Parallel()
	ledger, path := newTestLedger(t, Options{LockTimeout: 200 * time.Millisecond})
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	// A writer that crashed leaves the file but not the OS lock.
	require.NoError(t, os.WriteFile(path+".lock", []byte("pid: 4242\n"), 0o600))

	require.NoError(t, ledger.MarkSucceeded(context.Background(), values.MustNewUnitID("a"), values.NewRunID()))
}

func TestLedger_ContextCancelWhileWaiting(t *testing.T) {
	t.Parallel()
	ledger, path := newTestLedger(t, Options{LockTimeout: 10 * time.Second})
	holdLock(t, path)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := ledger.MarkSucceeded(ctx, values.MustNewUnitID("a"), values.NewRunID())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrLockTimeout)
}

func TestLedger_ConcurrentWritersDoNotLoseUpdates(t *testing.T) {
	t.Parallel()
	_, path := newTestLedger(t, Options{})
	ctx := context.Background()

	const writers = 12
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Separate instances stand in for separate processes.
			l := NewLedger(path, Options{LockTimeout: 5 * time.Second})
			errs[i] = l.MarkSucceeded(ctx, values.MustNewUnitID(fmt.Sprintf("unit-%02d", i)), values.NewRunID())
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	entries, err := NewLedger(path, Options{}).Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, writers)
}

// holdLock takes the ledger lock through a separate handle, standing in
// for another process.
func holdLock(t *testing.T, ledgerPath string) *flock.Flock {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(ledgerPath), 0o755))
	lock := flock.New(ledgerPath + ".lock")
	ok, err := lock.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	t.Cleanup(func() { _ = lock.Unlock() })
	return lock
}
