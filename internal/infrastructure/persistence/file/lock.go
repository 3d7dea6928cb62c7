package file

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLockTimeout is returned when another process holds the ledger lock
// for longer than the configured timeout.
var ErrLockTimeout = errors.New("timed out waiting for ledger lock")

func (l *Ledger) lockPath() string {
	return l.path + ".lock"
}

// acquire takes an exclusive OS lock on the lock file next to the ledger.
// The kernel drops the lock when the holder exits, so a crashed writer
// never blocks the next one.
func (l *Ledger) acquire(ctx context.Context) (*flock.Flock, error) {
	lock := flock.New(l.lockPath())

	waitCtx, cancel := context.WithTimeout(ctx, l.lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(waitCtx, lockPollInterval)
	if locked {
		return lock, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err == nil || errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %s", ErrLockTimeout, lock.Path())
	}
	return nil, fmt.Errorf("failed to lock ledger: %w", err)
}
