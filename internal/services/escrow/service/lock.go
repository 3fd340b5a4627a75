package service

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/wolfedge/escrow/internal/platform/errors"
)

// ErrLockTimeout indicates per-escrow exclusive access was not obtained
// within the configured bound. The submission is safe to retry.
var ErrLockTimeout = apperrors.New(apperrors.CodeContention, "timed out waiting for escrow lock")

// escrowLocks serializes submissions per escrow id. Locks for different
// escrows never contend, and entries are dropped once no caller holds or
// waits on them.
type escrowLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	ch   chan struct{}
	refs int
}

func newEscrowLocks() *escrowLocks {
	return &escrowLocks{entries: make(map[string]*lockEntry)}
}

// acquire obtains exclusive access for the escrow id. It honors context
// cancellation while waiting and converts a timeout into ErrLockTimeout.
// The returned release function must be called exactly once.
func (l *escrowLocks) acquire(ctx context.Context, escrowID string, timeout time.Duration) (release func(), err error) {
	l.mu.Lock()
	entry := l.entries[escrowID]
	if entry == nil {
		entry = &lockEntry{ch: make(chan struct{}, 1)}
		l.entries[escrowID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case entry.ch <- struct{}{}:
		return func() {
			<-entry.ch
			l.put(escrowID, entry)
		}, nil
	case <-ctx.Done():
		l.put(escrowID, entry)
		return nil, apperrors.Wrap(apperrors.CodeCanceled, "submission canceled while waiting for escrow lock", ctx.Err())
	case <-expired:
		l.put(escrowID, entry)
		return nil, ErrLockTimeout
	}
}

func (l *escrowLocks) put(escrowID string, entry *lockEntry) {
	l.mu.Lock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, escrowID)
	}
	l.mu.Unlock()
}
