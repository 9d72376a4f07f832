package repository

import (
	"context"
	"errors"
	"time"
)

// ErrLockHeld is returned by RunLock.Acquire when another run owns the lock.
var ErrLockHeld = errors.New("lock is held by another run")

// RunLock serialises ingestion runs for one location.
type RunLock interface {
	// Acquire takes the lock for key with the given lease. The returned
	// release func must be called once the run is over.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}
