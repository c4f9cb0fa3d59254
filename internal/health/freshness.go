package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// FreshnessChecker reports degraded when a data source has not updated
// within staleAfter. A source that never updated is given staleAfter from
// the checker's creation before it reports down.
type FreshnessChecker struct {
	name       string
	staleAfter time.Duration
	last       func() time.Time
	created    time.Time
	now        func() time.Time

	mu      sync.Mutex
	details map[string]interface{}
}

// NewFreshnessChecker creates a checker that reports degraded once last is
// older than staleAfter.
func NewFreshnessChecker(name string, staleAfter time.Duration, last func() time.Time) *FreshnessChecker {
	return &FreshnessChecker{
		name:       name,
		staleAfter: staleAfter,
		last:       last,
		created:    time.Now(),
		now:        time.Now,
	}
}

// Name returns the name of the checker.
func (f *FreshnessChecker) Name() string { return f.name }

// Check compares the last update with the staleness threshold.
func (f *FreshnessChecker) Check(ctx context.Context) error {
	now := f.now()
	last := f.last()

	details := map[string]interface{}{
		"stale_after": f.staleAfter.String(),
	}
	defer func() {
		f.mu.Lock()
		f.details = details
		f.mu.Unlock()
	}()

	if last.IsZero() {
		details["last_update"] = "never"
		if now.Sub(f.created) < f.staleAfter {
			return fmt.Errorf("%w: awaiting first update", ErrDegraded)
		}
		return fmt.Errorf("no update since start %s", humanize.RelTime(f.created, now, "ago", "from now"))
	}

	details["last_update"] = last
	age := now.Sub(last)
	if age > f.staleAfter {
		return fmt.Errorf("%w: last update %s", ErrDegraded, humanize.RelTime(last, now, "ago", "from now"))
	}
	return nil
}

// Details reports the last update seen by Check and the threshold.
func (f *FreshnessChecker) Details() map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.details
}
