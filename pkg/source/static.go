package source

import (
	"context"
	"sync"

	"github.com/goliatone/go-datagrid/components/datagrid"
)

// StaticSource serves a fixed set of rows, for tests and local demos.
type StaticSource struct {
	mu   sync.RWMutex
	rows []datagrid.Row
}

// NewStaticSource builds a static source from the provided rows.
func NewStaticSource(rows ...datagrid.Row) *StaticSource {
	return &StaticSource{rows: cloneRows(rows)}
}

// FetchRows returns copies of the configured rows.
func (s *StaticSource) FetchRows(context.Context) ([]datagrid.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRows(s.rows), nil
}

// Replace swaps the rows served by subsequent fetches.
func (s *StaticSource) Replace(rows []datagrid.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = cloneRows(rows)
}

// Described pairs a row source with the grid definition it feeds, so
// Service.LoadSources can register the grid before storing rows.
type Described struct {
	datagrid.RowSource
	Definition datagrid.GridDefinition
}

// Describe wraps src with def.
func Describe(def datagrid.GridDefinition, src datagrid.RowSource) *Described {
	return &Described{RowSource: src, Definition: def}
}

// GridDefinition implements datagrid.DefinitionSource.
func (d *Described) GridDefinition(context.Context) (datagrid.GridDefinition, error) {
	return d.Definition, nil
}

func cloneRows(rows []datagrid.Row) []datagrid.Row {
	out := make([]datagrid.Row, len(rows))
	for i, row := range rows {
		out[i] = row.Clone()
	}
	return out
}
