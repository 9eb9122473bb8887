package core

// cycle_limiter.go serializes import and save cycles.
//
// Only one cycle may touch the master sheet at a time: a save is a full
// clear-then-write, so two overlapping cycles would each overwrite the other's
// result. A cycle that finds the slot taken waits up to maxWait, then fails
// with ErrCycleBusy.
//
// WaitForDrain lets the server finish a running cycle before shutdown.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCycleBusy is returned when another cycle holds the slot past the wait
// timeout. Callers may retry once it finishes.
var ErrCycleBusy = errors.New("cycle busy: another import or save is in progress")

// CycleLimiter is a one-slot semaphore guarding the master sheet.
type CycleLimiter struct {
	slot    chan struct{}
	maxWait time.Duration

	mu      sync.RWMutex
	holder  string
	started time.Time
}

// NewCycleLimiter returns a limiter whose callers wait at most maxWait.
func NewCycleLimiter(maxWait time.Duration) *CycleLimiter {
	if maxWait <= 0 {
		maxWait = DefaultCycleWait
	}
	return &CycleLimiter{
		slot:    make(chan struct{}, 1),
		maxWait: maxWait,
	}
}

// Acquire takes the slot for the cycle identified by id.
// The caller MUST call Release when the cycle completes (use defer).
func (l *CycleLimiter) Acquire(ctx context.Context, id string) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.slot <- struct{}{}:
		l.setHolder(id)
		return nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrCycleBusy
	}
}

// TryAcquire takes the slot without blocking.
func (l *CycleLimiter) TryAcquire(id string) bool {
	select {
	case l.slot <- struct{}{}:
		l.setHolder(id)
		return true
	default:
		return false
	}
}

// Release frees the slot. Must be called exactly once per successful acquire.
func (l *CycleLimiter) Release() {
	l.mu.Lock()
	l.holder = ""
	l.started = time.Time{}
	l.mu.Unlock()

	<-l.slot
}

func (l *CycleLimiter) setHolder(id string) {
	l.mu.Lock()
	l.holder = id
	l.started = time.Now()
	l.mu.Unlock()
}

// Busy reports whether a cycle is running.
func (l *CycleLimiter) Busy() bool {
	return len(l.slot) == 1
}

// WaitForDrain blocks until no cycle is running or ctx is done.
func (l *CycleLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if !l.Busy() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// CycleStatus describes the running cycle, if any.
type CycleStatus struct {
	Busy    bool      `json:"busy"`
	CycleID string    `json:"cycle_id,omitempty"`
	Started time.Time `json:"started,omitzero"`
}

// Status returns the limiter state for monitoring.
func (l *CycleLimiter) Status() CycleStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return CycleStatus{
		Busy:    l.holder != "" || len(l.slot) == 1,
		CycleID: l.holder,
		Started: l.started,
	}
}
