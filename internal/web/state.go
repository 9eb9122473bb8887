package web

import (
	"context"
	"errors"
	"sync"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/stockbook/internal/core"
)

var errNotLoaded = errors.New("stock not loaded: reload the sheet")

// stockState holds the snapshot the server serves.
type stockState struct {
	mu     sync.RWMutex
	snap   core.Snapshot
	loaded bool
}

func (st *stockState) get() (core.Snapshot, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.snap, st.loaded
}

func (st *stockState) set(snap core.Snapshot) {
	st.mu.Lock()
	st.snap = snap
	st.loaded = snap.Header != nil
	st.mu.Unlock()
}

// mutate runs fn against the current snapshot while holding the write slot,
// and stores what fn returns on success. Two imports can therefore never
// merge into the same stale snapshot. requireLoaded rejects the call with
// errNotLoaded when no sheet has been loaded yet.
func (s *Server) mutate(ctx context.Context, requireLoaded bool, fn func(context.Context, core.Snapshot) (core.Snapshot, error)) (core.Snapshot, error) {
	if err := s.writes.Acquire(ctx, middleware.GetReqID(ctx)); err != nil {
		return core.Snapshot{}, err
	}
	defer s.writes.Release()

	snap, loaded := s.stock.get()
	if requireLoaded && !loaded {
		return snap, errNotLoaded
	}

	next, err := fn(ctx, snap)
	if err != nil {
		return snap, err
	}
	s.stock.set(next)
	return next, nil
}
