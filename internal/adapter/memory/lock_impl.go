package memory

import (
	"context"
	"sync"
	"time"

	"github.com/user/weather-crawler/internal/repository"
)

// RunLockImpl is an in-process RunLock, used when no Redis is configured.
type RunLockImpl struct {
	mu      sync.Mutex
	holders map[string]*lease
	now     func() time.Time
}

type lease struct {
	expires time.Time
}

var _ repository.RunLock = (*RunLockImpl)(nil)

func NewRunLock() *RunLockImpl {
	return &RunLockImpl{
		holders: make(map[string]*lease),
		now:     time.Now,
	}
}

func (l *RunLockImpl) Acquire(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cur, ok := l.holders[key]; ok && l.now().Before(cur.expires) {
		return nil, repository.ErrLockHeld
	}
	mine := &lease{expires: l.now().Add(ttl)}
	l.holders[key] = mine

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.holders[key] == mine {
			delete(l.holders, key)
		}
		return nil
	}, nil
}
