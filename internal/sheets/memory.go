package sheets

import (
	"context"
	"sync"
)

// Memory keeps sheets in process memory. Used by tests and for local runs.
type Memory struct {
	mu     sync.RWMutex
	sheets map[string][][]string
}

// NewMemory returns a store seeded with sheets (copied).
func NewMemory(seed map[string][][]string) *Memory {
	m := &Memory{sheets: make(map[string][][]string, len(seed))}
	for name, grid := range seed {
		m.sheets[name] = copyGrid(grid)
	}
	return m
}

// ReadSheet returns a copy of the named sheet.
func (m *Memory) ReadSheet(ctx context.Context, name string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	grid, ok := m.sheets[name]
	if !ok {
		return nil, ErrSheetNotFound
	}
	return copyGrid(grid), nil
}

// WriteSheet replaces the named sheet.
func (m *Memory) WriteSheet(ctx context.Context, name string, grid [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	staged := copyGrid(grid)

	m.mu.Lock()
	m.sheets[name] = staged
	m.mu.Unlock()
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
