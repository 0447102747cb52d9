package datagrid

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrStaleSnapshot is returned when a write is based on an outdated snapshot.
var ErrStaleSnapshot = errors.New("datagrid: snapshot changed since it was read")

// Snapshot is an immutable row set plus the version it was stored under.
type Snapshot struct {
	Rows    []Row
	Version uint64
}

// RowStore persists the current row snapshot of each grid.
type RowStore interface {
	Load(ctx context.Context, code string) (Snapshot, error)
	// Swap stores rows if the grid is still at version expected and returns
	// the new snapshot. Expected version 0 means the grid does not exist yet.
	Swap(ctx context.Context, code string, expected uint64, rows []Row) (Snapshot, error)
	Drop(ctx context.Context, code string) error
}

// InMemoryRowStore provides a concurrency-safe default RowStore.
type InMemoryRowStore struct {
	mu    sync.RWMutex
	grids map[string]Snapshot
}

// NewInMemoryRowStore creates an empty row store.
func NewInMemoryRowStore() *InMemoryRowStore {
	return &InMemoryRowStore{grids: make(map[string]Snapshot)}
}

// Load returns the current snapshot. Unknown grids yield an empty snapshot at
// version 0.
func (s *InMemoryRowStore) Load(_ context.Context, code string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grids[code], nil
}

// Swap replaces the snapshot when the stored version equals expected.
func (s *InMemoryRowStore) Swap(_ context.Context, code string, expected uint64, rows []Row) (Snapshot, error) {
	if code == "" {
		return Snapshot{}, fmt.Errorf("datagrid: grid code is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.grids[code]
	if current.Version != expected {
		return Snapshot{}, fmt.Errorf("%w: %s at version %d, expected %d", ErrStaleSnapshot, code, current.Version, expected)
	}
	next := Snapshot{Rows: slices.Clip(slices.Clone(rows)), Version: current.Version + 1}
	s.grids[code] = next
	return next, nil
}

// Drop forgets a grid's rows.
func (s *InMemoryRowStore) Drop(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grids, code)
	return nil
}
