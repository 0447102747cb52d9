package datagrid

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// GridPreferences is the per-viewer state remembered for a grid.
type GridPreferences struct {
	Query         Query           `json:"query"`
	ColumnOrder   []string        `json:"column_order,omitempty"`
	HiddenColumns map[string]bool `json:"hidden_columns,omitempty"`
}

// PreferenceStore persists per-viewer grid preferences.
type PreferenceStore interface {
	GridPreferences(ctx context.Context, viewer ViewerContext, code string) (GridPreferences, error)
	SaveGridPreferences(ctx context.Context, viewer ViewerContext, code string, prefs GridPreferences) error
}

// InMemoryPreferenceStore provides a concurrency-safe default store.
type InMemoryPreferenceStore struct {
	mu   sync.RWMutex
	data map[string]GridPreferences
}

// NewInMemoryPreferenceStore creates an empty preference store.
func NewInMemoryPreferenceStore() *InMemoryPreferenceStore {
	return &InMemoryPreferenceStore{
		data: make(map[string]GridPreferences),
	}
}

// GridPreferences returns stored preferences, or defaults for anonymous or
// unknown viewers.
func (s *InMemoryPreferenceStore) GridPreferences(_ context.Context, viewer ViewerContext, code string) (GridPreferences, error) {
	if viewer.UserID == "" {
		return normalizePreferences(GridPreferences{}), nil
	}
	s.mu.RLock()
	prefs, ok := s.data[preferenceKey(viewer, code)]
	s.mu.RUnlock()
	if !ok {
		return normalizePreferences(GridPreferences{}), nil
	}
	return clonePreferences(prefs), nil
}

// SaveGridPreferences persists preferences for a viewer.
func (s *InMemoryPreferenceStore) SaveGridPreferences(_ context.Context, viewer ViewerContext, code string, prefs GridPreferences) error {
	if viewer.UserID == "" {
		return fmt.Errorf("datagrid: preference store requires viewer user id")
	}
	prefs = clonePreferences(normalizePreferences(prefs))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[preferenceKey(viewer, code)] = prefs
	return nil
}

func preferenceKey(viewer ViewerContext, code string) string {
	return viewer.UserID + "::" + code
}

func normalizePreferences(prefs GridPreferences) GridPreferences {
	if prefs.HiddenColumns == nil {
		prefs.HiddenColumns = map[string]bool{}
	}
	return prefs
}

func clonePreferences(prefs GridPreferences) GridPreferences {
	prefs.Query.Filters = maps.Clone(prefs.Query.Filters)
	prefs.ColumnOrder = slices.Clone(prefs.ColumnOrder)
	prefs.HiddenColumns = maps.Clone(prefs.HiddenColumns)
	return prefs
}
