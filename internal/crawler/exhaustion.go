package crawler

import (
	"sync"
	"sync/atomic"

	"github.com/user/weather-crawler/internal/entity"
)

// Exhaustion is the shared "no older data" flag of one crawl. It is set by
// any month task that finds no table or fails to fetch, and is never cleared.
type Exhaustion struct {
	set atomic.Bool

	mu     sync.Mutex
	at     entity.YearMonth // newest month that reported exhaustion
	reason string
}

// Set marks the crawl exhausted at ym. It reports whether ym became the
// boundary, i.e. it is newer than every month recorded before it.
func (e *Exhaustion) Set(ym entity.YearMonth, reason string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.set.Load() && !e.at.Before(ym) {
		return false
	}
	e.at = ym
	e.reason = reason
	e.set.Store(true)
	return true
}

// Exhausted reports whether any task has signalled exhaustion.
func (e *Exhaustion) Exhausted() bool {
	return e.set.Load()
}

// Covers reports whether ym is at or before the exhaustion boundary, so
// fetching it would only walk further past the end of the data.
func (e *Exhaustion) Covers(ym entity.YearMonth) bool {
	if !e.set.Load() {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.at.Before(ym)
}

// Boundary returns the exhaustion month and reason.
func (e *Exhaustion) Boundary() (entity.YearMonth, string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.at, e.reason, e.set.Load()
}
